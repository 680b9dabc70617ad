package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AllowedHosts rejects requests whose Host header is not on the allow-list.
// An empty list or a "*" entry disables the check.
func AllowedHosts(hosts []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(hosts))
	allowAll := len(hosts) == 0
	for _, h := range hosts {
		if h == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(h)] = struct{}{}
	}

	return func(c *gin.Context) {
		if allowAll {
			c.Next()
			return
		}

		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if _, ok := allowed[strings.ToLower(host)]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid host header"})
			c.Abort()
			return
		}
		c.Next()
	}
}
