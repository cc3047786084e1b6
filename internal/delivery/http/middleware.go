package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// originMatcher answers whether a request Origin is allowed. Entries
// ending in "*" match by prefix, anything else matches exactly.
type originMatcher struct {
	exact    map[string]struct{}
	prefixes []string
}

func newOriginMatcher(allowed []string) *originMatcher {
	m := &originMatcher{exact: make(map[string]struct{}, len(allowed))}
	for _, origin := range allowed {
		if prefix, ok := strings.CutSuffix(origin, "*"); ok {
			m.prefixes = append(m.prefixes, prefix)
			continue
		}
		m.exact[origin] = struct{}{}
	}
	return m
}

func (m *originMatcher) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, prefix := range m.prefixes {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	return newOriginMatcher(allowedOrigins).allows(origin)
}

// CORSMiddleware handles CORS for the storefront and partner portals
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	matcher := newOriginMatcher(allowedOrigins)

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if matcher.allows(origin) {
			header := c.Writer.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			header.Set("Access-Control-Max-Age", "3600")
			header.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// LoggerMiddleware logs requests (simple version for now)
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
