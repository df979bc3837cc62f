package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// isWebClient decides whether tokens also travel as cookies. An explicit
// X-Client-Type header wins over the user agent.
func isWebClient(c *gin.Context) bool {
	switch strings.ToLower(strings.TrimSpace(c.GetHeader("X-Client-Type"))) {
	case "web":
		return true
	case "mobile", "api", "cli":
		return false
	}
	return strings.Contains(c.GetHeader("User-Agent"), "Mozilla/")
}
