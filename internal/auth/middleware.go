package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionResolver loads business membership and roles for a user id.
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID string) (*UserContext, error)
}

type Middleware struct {
	tokens   *TokenManager
	resolver SessionResolver
	logger   logger.ZapLogger
}

func NewMiddleware(tokens *TokenManager, resolver SessionResolver, log logger.ZapLogger) *Middleware {
	return &Middleware{tokens: tokens, resolver: resolver, logger: log}
}

// Authenticate parses the bearer token and resolves the caller's session.
// It answers 401 when the token is missing or invalid.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		user, err := m.resolver.ResolveSession(c.Request.Context(), claims.Subject)
		if err != nil {
			m.logger.Error("failed to resolve session", zap.String("user_id", claims.Subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		SetUser(c, user)
		c.Next()
	}
}

// RequireBusiness rejects users that have not onboarded yet.
func RequireBusiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetBusinessID(c) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Business onboarding required"})
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil || !user.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
			return
		}
		c.Next()
	}
}

func RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil || !user.IsPlatformAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not a platform admin"})
			return
		}
		c.Next()
	}
}

func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
