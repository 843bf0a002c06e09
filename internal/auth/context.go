package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

// GetUserID returns the authenticated user's ID, or false for anonymous requests.
func GetUserID(c *gin.Context) (int64, bool) {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(int64); ok {
			return id, true
		}
	}
	return 0, false
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}
