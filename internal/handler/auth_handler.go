package handler

import (
	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证接口处理器
type AuthHandler struct {
	svc service.AuthService
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login 登录接口
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	rsp, err := h.svc.Login(req)
	if err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, rsp)
}

// Register 注册接口
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	if err := h.svc.Register(req); err != nil {
		HandleError(c, statusOf(err), err)
		return
	}
	HandleSuccess(c, nil)
}
