package middleware

import (
	"context"
	"net/http"

	"github.com/charro/storefront/internal/domain/identity"
	"github.com/charro/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserRoleKey holds the role loaded by RequireBackOffice
const UserRoleKey = "user_role"

// UserLookup loads users by id
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// RequireBackOffice admits only active users holding a back-office role.
// The role is read from the store on every request so demotions apply at once.
// It must run after JWTAuth.
func RequireBackOffice(users UserLookup, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		id, err := uuid.Parse(GetJWTUserID(c))
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		user, err := users.FindByID(c.Request.Context(), id)
		if err != nil || !user.CanLogin() {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !user.Role.IsBackOffice() {
			log.Warn("Back-office access denied",
				zap.String("user_id", id.String()),
				zap.String("role", string(user.Role)),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Back-office role required", GetRequestID(c)))
			return
		}

		c.Set(UserRoleKey, string(user.Role))
		c.Next()
	}
}

// IsBackOffice reports whether RequireBackOffice admitted the request
func IsBackOffice(c *gin.Context) bool {
	return identity.Role(c.GetString(UserRoleKey)).IsBackOffice()
}

// LoadRole records the caller's role without restricting access. It must run after JWTAuth.
func LoadRole(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := uuid.Parse(GetJWTUserID(c)); err == nil {
			if user, err := users.FindByID(c.Request.Context(), id); err == nil && user.CanLogin() {
				c.Set(UserRoleKey, string(user.Role))
			}
		}
		c.Next()
	}
}
