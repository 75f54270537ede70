package routes

import (
	"github.com/BerniceZTT/crm_pipeline/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由
func RegisterAuthRoutes(router *gin.RouterGroup, ctl *controllers.AuthController) {
	authRoutes := router.Group("/auth")

	authRoutes.POST("/register", ctl.Register)
	authRoutes.POST("/login", ctl.Login)
	authRoutes.POST("/refresh", ctl.Refresh)
}
