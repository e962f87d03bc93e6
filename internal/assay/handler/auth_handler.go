package handler

import (
	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc      *service.AuthService
	sessions *service.SessionService
}

func NewAuthHandler(svc *service.AuthService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Username and password are required")
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, result)
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := GetSessionID(c)
	if err := h.svc.Logout(c.Request.Context(), sid); err != nil {
		InternalError(c, "logout failed: "+err.Error())
		return
	}
	h.sessions.Close(GetUserID(c), sid)
	Success(c, nil)
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.GetCurrentUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user)
}
