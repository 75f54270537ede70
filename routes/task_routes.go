package routes

import (
	"github.com/BerniceZTT/crm_pipeline/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterTaskRoutes 注册任务相关路由
func RegisterTaskRoutes(router *gin.RouterGroup, ctl *controllers.TaskController) {
	taskRoutes := router.Group("/tasks")

	taskRoutes.GET("", ctl.List)
	taskRoutes.POST("", ctl.Create)
	taskRoutes.PATCH("/:id", ctl.Update)
	taskRoutes.DELETE("/:id", ctl.Delete)
}
