package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const identityKey contextKey = "identity"

// DevHeader names the header that sets the household in development
const DevHeader = "X-Household-ID"

// Anonymous owns everything created without credentials
const Anonymous = "anonymous"

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is who is calling. Household is the owner of sessions and
// falls back to the subject when the token carries none.
type Identity struct {
	Subject   string
	Household string
}

// Owner returns the id that sessions are keyed by
func (i Identity) Owner() string {
	switch {
	case i.Household != "":
		return i.Household
	case i.Subject != "":
		return i.Subject
	default:
		return Anonymous
	}
}

// Claims are the token claims this service reads and issues
type Claims struct {
	Household string `json:"household,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SecretKey string

	// RequireToken rejects requests without credentials
	RequireToken bool
	// AllowDevHeader accepts DevHeader in place of a token
	AllowDevHeader bool
}

// NewJWTConfig creates a new JWT config
func NewJWTConfig(secretKey string) *JWTConfig {
	if secretKey == "" {
		secretKey = "default-secret-key-change-in-production" // Default for development
	}
	return &JWTConfig{SecretKey: secretKey, AllowDevHeader: true}
}

// Issue signs a token for subject and household valid for ttl
func (c *JWTConfig) Issue(subject, household string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Household: household,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a signed token and returns its identity
func (c *JWTConfig) ParseToken(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrMissingToken
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(c.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return Identity{Subject: claims.Subject, Household: claims.Household}, nil
}

// Authenticate resolves the identity of r. A request without
// credentials is anonymous unless RequireToken is set.
func (c *JWTConfig) Authenticate(r *http.Request) (Identity, error) {
	if c.AllowDevHeader {
		if household := r.Header.Get(DevHeader); household != "" {
			return Identity{Household: household}, nil
		}
	}

	tokenString := bearer(r.Header.Get("Authorization"))
	if tokenString == "" {
		// Browsers cannot set headers on websocket upgrades.
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		if c.RequireToken {
			return Identity{}, ErrMissingToken
		}
		return Identity{}, nil
	}
	return c.ParseToken(tokenString)
}

func bearer(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Middleware creates a JWT authentication middleware
func (c *JWTConfig) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" && bearer(h) == "" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		identity, err := c.Authenticate(r)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// WithIdentity stores identity in ctx
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity extracts the identity from context
func GetIdentity(ctx context.Context) Identity {
	if identity, ok := ctx.Value(identityKey).(Identity); ok {
		return identity
	}
	return Identity{}
}

// GetOwner extracts the session owner from context
func GetOwner(ctx context.Context) string {
	return GetIdentity(ctx).Owner()
}
