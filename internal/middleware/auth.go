package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// Authenticator resolves a bearer token to the principal of its session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Principal, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate verifies the bearer token and stores the principal in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			handler.RespondUnauthorized(c, "authentication required")
			return
		}

		principal, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				handler.RespondUnauthorized(c, "invalid or expired session")
				return
			}
			handler.RespondError(c, err)
			return
		}

		handler.SetPrincipal(c, principal)
		c.Next()
	}
}

// Optional sets the principal when a valid token is present and never rejects.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if principal, err := m.auth.Authenticate(c.Request.Context(), token); err == nil {
				handler.SetPrincipal(c, principal)
			}
		}
		c.Next()
	}
}

// RequireRole is the coarse route gate; record-level checks stay in the services.
func RequireRole(roles ...model.RoleKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := handler.CurrentPrincipal(c)
		if !ok {
			handler.RespondUnauthorized(c, "authentication required")
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		handler.RespondError(c, errors.Forbidden(denialMessage(roles)))
	}
}

// RequirePolicy gates a route on a record-free policy operation.
func RequirePolicy(op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := handler.CurrentPrincipal(c)
		if !ok {
			handler.RespondUnauthorized(c, "authentication required")
			return
		}
		if err := policy.Enforce(principal, op, policy.Resource{}); err != nil {
			handler.RespondError(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func denialMessage(roles []model.RoleKind) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return "this page is only available to " + strings.Join(names, " or ") + " accounts"
}
