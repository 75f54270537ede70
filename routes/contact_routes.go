package routes

import (
	"github.com/BerniceZTT/crm_pipeline/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterContactRoutes 注册联系人相关路由
func RegisterContactRoutes(router *gin.RouterGroup, ctl *controllers.ContactController) {
	contactRoutes := router.Group("/contacts")

	contactRoutes.GET("", ctl.List)
	contactRoutes.POST("", ctl.Create)
	contactRoutes.GET("/:id", ctl.Get)
	contactRoutes.PATCH("/:id", ctl.Update)
	contactRoutes.DELETE("/:id", ctl.Delete)
}
