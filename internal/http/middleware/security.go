// Package middleware contains shared Gin middleware used by the admin API.
//
// This file sets a conservative security-header posture for the JSON-only
// admin surface.
package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders applies standard hardening headers to every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}
