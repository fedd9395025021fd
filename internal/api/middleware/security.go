package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersConfig holds configuration for the security headers middleware.
type SecurityHeadersConfig struct {
	// IsDevelopment skips HSTS so plain http on localhost keeps working.
	IsDevelopment bool
	// ServesFrontend relaxes the CSP enough for the bundled SPA.
	ServesFrontend bool
}

// SecurityHeaders sets the response hardening headers.
func SecurityHeaders(cfg SecurityHeadersConfig) gin.HandlerFunc {
	csp := buildCSP(cfg)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", csp)
		if !cfg.IsDevelopment {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), usb=()")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		c.Next()
	}
}

func buildCSP(cfg SecurityHeadersConfig) string {
	if !cfg.ServesFrontend {
		// JSON only
		return "default-src 'none'; frame-ancestors 'none'"
	}
	directives := []string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
		"font-src 'self' data:",
		"connect-src 'self'",
		"object-src 'none'",
		"base-uri 'self'",
		"frame-ancestors 'none'",
	}
	if cfg.IsDevelopment {
		directives[1] = "script-src 'self' 'unsafe-inline' 'unsafe-eval'"
		directives[5] = "connect-src 'self' ws: wss:"
	}
	return strings.Join(directives, "; ")
}
