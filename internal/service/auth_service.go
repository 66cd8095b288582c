package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eswarnandha-a/sece-space/internal/config"
	"github.com/eswarnandha-a/sece-space/internal/model"
)

// Claims extends JWT standard claims with the principal's role. Tokens
// are issued by the external auth service; this backend only verifies
// them against the shared signing secret.
type Claims struct {
	jwt.RegisteredClaims
	Role  model.Role `json:"role"`
	Name  string     `json:"name,omitempty"`
	Email string     `json:"email,omitempty"`
}

// Principal is the authenticated identity passed into every mutating
// operation so authorization happens server-side, never from
// caller-supplied role strings.
type Principal struct {
	ID   string
	Role model.Role
}

// Principal extracts the identity carried by the claims.
func (c *Claims) Principal() Principal {
	return Principal{ID: c.Subject, Role: c.Role}
}

// AuthService validates externally issued principal tokens.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if claims.Role != model.RoleFaculty && claims.Role != model.RoleStudent {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	return claims, nil
}
