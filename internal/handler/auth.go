package handler

import (
	"net/http"

	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Log in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Current identity and its permissions
// @Tags auth
// @Produce json
// @Success 200 {object} dto.IdentityResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id := actor(c)
	perms := rbac.Permissions(id.Role)
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	c.JSON(http.StatusOK, dto.IdentityResponse{
		ID:          id.UserID.String(),
		Username:    id.Username,
		Name:        id.Name,
		Role:        string(id.Role),
		Permissions: names,
	})
}
