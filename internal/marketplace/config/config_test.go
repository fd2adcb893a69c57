package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv blanks every override so the host environment cannot leak in.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GRPC_PORT", "HTTP_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_SSLMODE", "JWT_SECRET", "TOPIC", "IMPORT_TOPIC", "IMPORT_GROUP_ID", "KAFKA_BROKERS",
		"STARTUP_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Sample(t *testing.T) {
	isolateEnv(t)
	cfg, err := LoadFile("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, "marketplace", cfg.DBName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "marketplace.company-imports", cfg.ImportTopic)
	assert.Equal(t, time.Minute, cfg.StartupTimeout)
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, "DB_HOST: db\nDB_NAME: market\nJWT_SECRET: s\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "marketplace.applications", cfg.Topic)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "DB_HOST: db\nDB_NAME: market\nJWT_SECRET: from-file\n")
	t.Setenv("DB_HOST", "postgres.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STARTUP_TIMEOUT", "5s")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres.internal", cfg.DBHost)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.StartupTimeout)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed yaml", body: "GRPC_PORT: ["},
		{name: "missing secret", body: "DB_HOST: db\nDB_NAME: market\n"},
		{name: "missing database", body: "JWT_SECRET: s\n"},
		{name: "import without brokers", body: "DB_HOST: db\nDB_NAME: m\nJWT_SECRET: s\nIMPORT_TOPIC: imports\n"},
		{name: "bad port", body: "DB_HOST: db\nDB_NAME: m\nJWT_SECRET: s\n", env: map[string]string{"HTTP_PORT": "eighty"}},
		{name: "bad timeout", body: "DB_HOST: db\nDB_NAME: m\nJWT_SECRET: s\n", env: map[string]string{"STARTUP_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_UsesEnvPath(t *testing.T) {
	t.Setenv(EnvPath, writeConfig(t, "DB_HOST: db\nDB_NAME: m\nJWT_SECRET: s\nGRPC_PORT: 9999\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.GRPCPort)
}
