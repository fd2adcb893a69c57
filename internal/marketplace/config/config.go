// Package config loads service settings from a YAML file, then applies
// overrides from a .env file and the process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPath names the variable that points at the YAML file.
const EnvPath = "MARKETPLACE_CONFIG"

// DefaultPath is used when EnvPath is unset.
var DefaultPath = filepath.Join("internal", "marketplace", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort     int      `yaml:"GRPC_PORT"`
	HTTPPort     int      `yaml:"HTTP_PORT"`
	DBHost       string   `yaml:"DB_HOST"`
	DBPort       int      `yaml:"DB_PORT"`
	DBUser       string   `yaml:"DB_USER"`
	DBPassword   string   `yaml:"DB_PASSWORD"`
	DBName       string   `yaml:"DB_NAME"`
	DBSSLMode    string   `yaml:"DB_SSLMODE"`
	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	JWTSecret    string   `yaml:"JWT_SECRET"`
	// Topic receives workflow events.
	Topic string `yaml:"TOPIC"`
	// ImportTopic carries company-import requests; empty disables the consumer.
	ImportTopic   string `yaml:"IMPORT_TOPIC"`
	ImportGroupID string `yaml:"IMPORT_GROUP_ID"`
	// StartupTimeout bounds the retries for the database and Kafka at boot.
	StartupTimeout time.Duration `yaml:"STARTUP_TIMEOUT"`
}

// Load reads the YAML file named by MARKETPLACE_CONFIG (or DefaultPath),
// loads .env if present and applies environment overrides.
func Load() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit YAML path.
func LoadFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		GRPCPort:       50051,
		HTTPPort:       8080,
		DBPort:         5432,
		DBSSLMode:      "disable",
		Topic:          "marketplace.applications",
		ImportGroupID:  "marketplace-importer",
		StartupTimeout: time.Minute,
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	for key, dst := range map[string]*int{
		"GRPC_PORT": &c.GRPCPort,
		"HTTP_PORT": &c.HTTPPort,
		"DB_PORT":   &c.DBPort,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	str("DB_HOST", &c.DBHost)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_SSLMODE", &c.DBSSLMode)
	str("JWT_SECRET", &c.JWTSecret)
	str("TOPIC", &c.Topic)
	str("IMPORT_TOPIC", &c.ImportTopic)
	str("IMPORT_GROUP_ID", &c.ImportGroupID)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.KafkaBrokers = splitList(v)
	}
	if v, ok := lookup("STARTUP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STARTUP_TIMEOUT: %w", err)
		}
		c.StartupTimeout = d
	}
	return nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DBHost == "" || c.DBName == "" {
		return fmt.Errorf("DB_HOST and DB_NAME are required")
	}
	if c.ImportTopic != "" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("IMPORT_TOPIC requires KAFKA_BROKERS")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
