// This is a **mock authentication service**, designed to provide JWT tokens
// for the marketplace service during local development.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/sanayimarketi/marketplace/internal/marketplace/auth"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"
	defaultSecret = "jwt_secret"
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token string `json:"token"`
}

// tokenHandler issues a token for ?user_id=<id>&role=<USER|ADMIN>.
func tokenHandler(secret string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, "user_id must be a positive integer", http.StatusBadRequest)
			return
		}

		role := models.Role(r.URL.Query().Get("role"))
		switch role {
		case "":
			role = models.RoleUser
		case models.RoleUser, models.RoleAdmin:
		default:
			http.Error(w, "role must be USER or ADMIN", http.StatusBadRequest)
			return
		}

		token, err := auth.GenerateToken(userID, role, secret)
		if err != nil {
			logger.Error("Failed to generate token", zap.Error(err))
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(TokenResponse{Token: token}); err != nil {
			logger.Error("Failed to encode token", zap.Error(err))
		}
	}
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	secret := envOr("JWT_SECRET", defaultSecret)
	port := envOr("AUTH_PORT", defaultPort)

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(secret, logger))

	logger.Info("Authentication service running", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Fatal("Authentication service stopped", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
