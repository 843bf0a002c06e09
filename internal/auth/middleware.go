package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	errMissingHeader = errors.New("missing Authorization header")
	errBadHeader     = errors.New("invalid Authorization header format")
	errBadToken      = errors.New("invalid or expired token")
)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, jwtManager); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is sent and
// otherwise lets the request through anonymously. A malformed or expired token
// is treated the same as no token.
func OptionalAuth(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = authenticate(c, jwtManager)
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtManager *JWTManager) error {
	header := c.GetHeader("Authorization")
	if header == "" {
		return errMissingHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return errBadHeader
	}

	claims, err := jwtManager.ParseAndValidate(parts[1])
	if err != nil {
		return errBadToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return errBadToken
	}

	// Store user info into Gin context for later handlers.
	c.Set(userIDKey, userID)
	c.Set(userEmailKey, claims.Email)
	return nil
}
