package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/observability/metrics"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const IdentityKey = "identity"

// Verifier resolves a bearer token to the caller. service.AuthService implements it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*service.Identity, error)
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if e, ok := apierror.As(err); ok {
				c.AbortWithStatusJSON(e.Status(), e.Body())
				return
			}
			log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("token verification failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RequirePermission admits callers holding every listed permission.
func RequirePermission(perms ...rbac.Permission) gin.HandlerFunc {
	return Require(rbac.AllOf(perms...))
}

// RequireAnyPermission admits callers holding at least one listed permission.
func RequireAnyPermission(perms ...rbac.Permission) gin.HandlerFunc {
	return Require(rbac.AnyOf(perms...))
}

// RequireMinRole admits callers whose role level is at least role's.
func RequireMinRole(role rbac.Role) gin.HandlerFunc {
	return Require(rbac.MinRole(role))
}

// Require applies an authorization requirement. Every denial is written to
// the audit log.
func Require(req rbac.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		var role rbac.Role
		if identity != nil {
			role = identity.Role
		}

		d := rbac.Authorize(role, req)
		if d.Allowed {
			c.Next()
			return
		}

		ev := log.Warn().
			Str("event", "authz_denied").
			Str("role", string(role)).
			Str("requirement", req.String()).
			Str("reason", d.Reason).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(RequestIDKey))
		if identity != nil {
			ev = ev.Str("user_id", identity.UserID.String())
		}
		ev.Msg("access denied")
		metrics.AuthzDenied(string(role))

		c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("forbidden: "+d.Reason))
	}
}

// GetIdentity returns the verified caller, or nil on unauthenticated routes.
func GetIdentity(c *gin.Context) *service.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*service.Identity)
	return identity
}
