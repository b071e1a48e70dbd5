package middleware

import (
	"net/http"
	"strings"

	"catering_orders/pkg/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authentication.
const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextCompanyID = "company_id"
)

// Authentication accepts "Authorization: Bearer <jwt>" or a bare "token"
// header.
func Authentication(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := c.Request.Header.Get("token")
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			clientToken = strings.TrimPrefix(header, "Bearer ")
		}
		if clientToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := tokens.Validate(clientToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		if claims.CompanyID != nil {
			c.Set(ContextCompanyID, *claims.CompanyID)
		}
		c.Next()
	}
}

// RequireRoles lets through only callers holding one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(ContextRole)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
