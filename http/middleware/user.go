package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	userIDHeader     = "X-User-Id"
	userIDContextKey = "x-user-id"
)

// NewUser resolves the calling user from the gateway-injected header. Every
// route behind it can assume a valid id is present.
func NewUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.GetHeader(userIDHeader), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing or malformed " + userIDHeader + " header",
		})

		return
	}

	c.Set(userIDContextKey, userID)

	c.Next()
}

func GetUserIDFromContext(c *gin.Context) uint64 {
	return c.GetUint64(userIDContextKey)
}
