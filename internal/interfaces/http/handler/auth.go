package handler

import (
	identityapp "github.com/charro/storefront/internal/application/identity"
	"github.com/charro/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-in, sign-up and token renewal
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary      User login
// @Tags         auth
// @Accept       json
// @Param        request body identityapp.LoginRequest true "Login credentials"
// @Router       /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Register godoc
// @Summary      Create a client account
// @Tags         auth
// @Accept       json
// @Param        request body identityapp.RegisterRequest true "Account details"
// @Router       /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ValidateToken godoc
// @Summary      Check a token and issue a fresh one
// @Tags         auth
// @Security     BearerAuth
// @Router       /user/validate-token [get]
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		h.Unauthorized(c, "Missing or malformed authorization header")
		return
	}
	result, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
