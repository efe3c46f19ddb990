// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beedab-service/internal/domain/auth"
	"beedab-service/internal/middleware"
	"beedab-service/internal/pkg/response"
	authService "beedab-service/internal/service/auth"
)

type AuthHandler struct {
	authService *authService.Service
	logger      *zap.Logger
}

func NewAuthHandler(svc *authService.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: svc,
		logger:      logger,
	}
}

// Register handles account creation (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		h.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, err, "registration failed")
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", resp)
}

// Login handles credential login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		h.logger.Warn("login failed", zap.String("email", req.Email), zap.String("ip", c.ClientIP()))
		response.FromError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, "login successful", resp)
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.FromError(c, err, "token refresh failed")
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", resp)
}

// Logout revokes the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)
	jti, _ := middleware.GetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), identityID, jti); err != nil {
		response.FromError(c, err, "logout failed")
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// LogoutAll revokes every session of the caller
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	identityID := middleware.MustGetIdentityID(c)

	if err := h.authService.LogoutAll(c.Request.Context(), identityID); err != nil {
		response.FromError(c, err, "logout failed")
		return
	}

	response.Success(c, http.StatusOK, "all sessions revoked", nil)
}
