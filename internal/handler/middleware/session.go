package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"stockroom/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const ctxOwnerIDKey = "owner_id"

// SessionMiddleware extracts the buyer identity from the session token issued
// by the storefront's auth collaborator. OwnerID stays an opaque string; no
// account lookup happens here.
type SessionMiddleware struct {
	tokens *jwt.Service
}

func NewSessionMiddleware(tokens *jwt.Service) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens}
}

func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session token required",
			})
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			slog.Warn("session token validation failed", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session token",
			})
			c.Abort()
			return
		}

		c.Set(ctxOwnerIDKey, claims.OwnerID)
		c.Next()
	}
}

// OptionalSession sets the owner when a valid token is present but never
// aborts. Anonymous carts reserve without one.
func (m *SessionMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ctxOwnerIDKey, claims.OwnerID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetOwnerID(c *gin.Context) (string, bool) {
	ownerID, exists := c.Get(ctxOwnerIDKey)
	if !exists {
		return "", false
	}

	id, ok := ownerID.(string)
	return id, ok
}
