package controllers

import (
	"net/http"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// AuthController 注册、登录、刷新令牌
type AuthController struct {
	auth *service.AuthService
}

// NewAuthController 创建 AuthController
func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register 用户注册并创建组织
func (ctl *AuthController) Register(c *gin.Context) {
	var in models.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	tokens, err := ctl.auth.Register(c.Request.Context(), in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, tokens, "注册成功", http.StatusCreated)
}

// Login 用户登录
func (ctl *AuthController) Login(c *gin.Context) {
	var in models.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	tokens, err := ctl.auth.Login(c.Request.Context(), in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, tokens, "登录成功")
}

// Refresh 刷新令牌
func (ctl *AuthController) Refresh(c *gin.Context) {
	var in models.RefreshInput
	if !bindJSON(c, &in) {
		return
	}
	tokens, err := ctl.auth.Refresh(c.Request.Context(), in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, tokens, "")
}
