package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "bearer "

// BearerToken extracts the credential from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}
