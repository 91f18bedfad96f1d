package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/response"
	"github.com/harentsoaR/hospital-api/internal/services"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
}

// AuthMiddleware resolves the bearer token to an identity and stores it in
// the context for the role gates and handlers.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperr.ErrUnauthorized)
			return
		}

		id, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Identity returns the caller set by AuthMiddleware, or nil.
func Identity(c *gin.Context) *services.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*services.Identity)
	return id
}

// RequireRoles lets the request through only for the listed roles. It must
// run after AuthMiddleware.
func RequireRoles(roles ...services.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c)
		if id == nil {
			response.Error(c, apperr.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		response.Error(c, apperr.ErrForbidden)
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(services.RoleAdmin)
}

func RequirePatientOrAdmin() gin.HandlerFunc {
	return RequireRoles(services.RoleAdmin, services.RolePatient)
}

func RequireDoctor() gin.HandlerFunc {
	return RequireRoles(services.RoleDoctor)
}

func RequireAnyRole() gin.HandlerFunc {
	return RequireRoles(services.RoleAdmin, services.RolePatient, services.RoleDoctor)
}
