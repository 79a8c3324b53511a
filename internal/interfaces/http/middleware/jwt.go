package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charro/storefront/internal/infrastructure/auth"
	"github.com/charro/storefront/internal/infrastructure/logger"
	"github.com/charro/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTUserIDKey = logger.GinUserIDKey
	JWTEmailKey  = "jwt_email"
	BearerPrefix = "Bearer "
)

// TokenVerifier parses session tokens
type TokenVerifier interface {
	ParseToken(token string) (*auth.Claims, error)
}

// JWTAuth requires a valid bearer token and stores its user id in the context
func JWTAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing or malformed authorization header")
			return
		}

		claims, err := verifier.ParseToken(token)
		if err != nil {
			log.Debug("Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "TOKEN_EXPIRED", "Token has expired")
				return
			}
			abortUnauthorized(c, "INVALID_TOKEN", "Token is not valid")
			return
		}

		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTEmailKey, claims.Email)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// GetJWTUserID returns the authenticated user id, or "" outside JWTAuth
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
