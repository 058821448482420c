package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contractguard-web/internal/shared/auth"
	"contractguard-web/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	orgIDKey       = "organizationId"
	bearerTokenKey = "bearerToken"

	devUserID = "dev-user"
)

// Auth validates bearer tokens and stores identity in context. The raw token
// is kept so upstream calls to the audit API carry the operator's identity.
// With no verifier configured every request runs as the dev user.
func Auth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if path == "/api/v1/health" || strings.HasPrefix(path, "/api/v1/waitlist") || path == "/metrics" {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		token := ""
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		}

		if !verifier.Enabled() {
			c.Set(userIDKey, devUserID)
			if token != "" {
				c.Set(bearerTokenKey, token)
			}
			c.Next()
			return
		}

		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(bearerTokenKey, token)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.OrganizationID != "" {
			c.Set(orgIDKey, claims.OrganizationID)
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// OrganizationIDFromContext fetches the organization set by the auth middleware.
func OrganizationIDFromContext(c *gin.Context) string {
	return stringFromContext(c, orgIDKey)
}

// BearerTokenFromContext returns the token to forward upstream, if any.
func BearerTokenFromContext(c *gin.Context) string {
	return stringFromContext(c, bearerTokenKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
