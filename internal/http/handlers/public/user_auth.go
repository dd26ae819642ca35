package public

import (
	"github.com/storefront/internal/constants"
	handlershared "github.com/storefront/internal/http/handlers/shared"
	"github.com/storefront/internal/http/response"
	"github.com/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email          string                              `json:"email"`
	Password       string                              `json:"password"`
	RoleRequested  string                              `json:"roleRequested"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captchaPayload"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email          string                              `json:"email"`
	Password       string                              `json:"password"`
	RoleRequested  string                              `json:"roleRequested"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captchaPayload"`
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneRegister, req.CaptchaPayload) {
		return
	}

	user, err := h.AuthService.Register(c.Request.Context(), service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		RoleRequested: req.RoleRequested,
	})
	if err != nil {
		respondRegisterError(c, err)
		return
	}

	response.Created(c, gin.H{"user": user.Public()})
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneLogin, req.CaptchaPayload) {
		return
	}

	user, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), service.LoginInput{
		Email:         req.Email,
		Password:      req.Password,
		RoleRequested: req.RoleRequested,
	})
	if err != nil {
		respondLoginError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":     token,
		"role":      user.Role,
		"user":      user.Public(),
		"expiresAt": expiresAt,
	})
}

// Me 当前用户信息
func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.Me(c.Request.Context(), userID)
	if err != nil {
		respondAccountError(c, err)
		return
	}
	response.Success(c, user.Public())
}

// RegisterAffiliate 已登录用户申请成为推广员
func (h *Handler) RegisterAffiliate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	affiliate, token, expiresAt, err := h.AuthService.RegisterAffiliate(c.Request.Context(), userID)
	if err != nil {
		respondAccountError(c, err)
		return
	}

	response.SuccessWithMsg(c, "Affiliate registration submitted for approval", gin.H{
		"affiliate": affiliate,
		"token":     token,
		"expiresAt": expiresAt,
	})
}

func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload handlershared.CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil || !h.CaptchaService.SceneEnabled(scene) {
		return true
	}
	if err := h.CaptchaService.Verify(scene, payload.ToServicePayload()); err != nil {
		handlershared.RespondCaptchaError(c, err)
		return false
	}
	return true
}
