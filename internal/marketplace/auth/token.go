package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
)

// TokenTTL is the lifetime of tokens issued by GenerateToken.
const TokenTTL = 24 * time.Hour

const bearerPrefix = "Bearer "

var (
	errMissingHeader = errors.New("authorization header missing")
	errBearerFormat  = errors.New("invalid authorization format: expected Bearer token")
)

// Claims is the token payload: the user id as subject plus the role.
type Claims struct {
	Role models.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type contextKey string

const actorContextKey contextKey = "actor"

// GenerateToken signs an HS256 token for userID valid for TokenTTL.
func GenerateToken(userID int64, role models.Role, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the caller stored by Interceptor or HTTPMiddleware.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	return actor, ok
}

// bearerToken strips the Bearer scheme from an Authorization header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return "", errBearerFormat
	}
	return token, nil
}

// authenticate verifies tokenString and returns the caller it names.
func authenticate(tokenString, secret string) (models.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Actor{}, err
	}
	return claims.actor()
}

// actor maps verified claims to an Actor. A token without a role acts as a
// plain user; SYSTEM is never granted by token.
func (c *Claims) actor() (models.Actor, error) {
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Actor{}, fmt.Errorf("subject %q is not a user id", c.Subject)
	}

	role := c.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return models.Actor{}, fmt.Errorf("role %q cannot be granted by token", role)
	}
	return models.Actor{UserID: userID, Role: role}, nil
}
