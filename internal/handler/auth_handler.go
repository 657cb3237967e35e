package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/balloon_quote/internal/middleware"
	"github.com/GTDGit/balloon_quote/internal/service"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	limiter     *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService *service.AuthService, limiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	ip := c.ClientIP()
	if h.limiter != nil && h.limiter.Blocked(ip) {
		utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many failed login attempts, try again later")
		return
	}

	token, op, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if h.limiter != nil && (errors.Is(err, utils.ErrInvalidCredentials) || errors.Is(err, utils.ErrInactiveOperator)) {
			h.limiter.Fail(ip)
		}
		utils.FromError(c, err, "Login failed")
		return
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token":    token,
		"operator": op,
	})
}
