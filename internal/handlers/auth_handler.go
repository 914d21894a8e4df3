package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/yds-assistant-service/internal/services"
	"github.com/SAP-F-2025/yds-assistant-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Login signs a user in by name, creating the account on first use
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param login body services.LoginRequest true "Username"
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "User logged in", "user", resp.User.Username)
	c.JSON(http.StatusOK, resp)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), currentUsername(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers lists known users for the login picker
// @Router /auth/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
