package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eswarnandha-a/sece-space/internal/model"
	"github.com/eswarnandha-a/sece-space/internal/response"
	"github.com/eswarnandha-a/sece-space/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

// errTokenMissing marks requests that carried no token at all, so the
// response says TOKEN_REQUIRED instead of TOKEN_INVALID.
var errTokenMissing = errors.New("no authorization token provided")

// RequireJWT validates a JWT from the Authorization header for either role.
func RequireJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			abortAuthFail(c, err)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireFacultyJWT validates a faculty JWT from the Authorization header.
func RequireFacultyJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			abortAuthFail(c, err)
			return
		}

		if claims.Role != model.RoleFaculty {
			response.AbortFail(c, http.StatusForbidden, response.ErrFacultyAccessOnly)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireStudentJWT validates a student JWT from the Authorization header.
func RequireStudentJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			abortAuthFail(c, err)
			return
		}

		if claims.Role != model.RoleStudent {
			response.AbortFail(c, http.StatusForbidden, response.ErrStudentAccessOnly)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractAndValidateClaims(c *gin.Context, authService *service.AuthService) (*service.Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}

	// Fallback for browser navigations to the file proxy, which cannot
	// send headers on a plain link or iframe.
	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	if tokenStr == "" {
		return nil, errTokenMissing
	}

	return authService.ValidateToken(tokenStr)
}

func abortAuthFail(c *gin.Context, err error) {
	code := response.ErrTokenInvalid
	if errors.Is(err, errTokenMissing) {
		code = response.ErrTokenRequired
	}
	response.AbortFail(c, http.StatusUnauthorized, code)
}
