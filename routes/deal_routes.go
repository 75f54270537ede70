package routes

import (
	"github.com/BerniceZTT/crm_pipeline/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterDealRoutes 注册商机及其活动路由
func RegisterDealRoutes(router *gin.RouterGroup, deals *controllers.DealController, activities *controllers.ActivityController) {
	dealRoutes := router.Group("/deals")

	dealRoutes.GET("", deals.List)
	dealRoutes.POST("", deals.Create)
	dealRoutes.GET("/:id", deals.Get)
	dealRoutes.PATCH("/:id", deals.Update)
	dealRoutes.DELETE("/:id", deals.Delete)

	dealRoutes.GET("/:id/activities", activities.List)
	dealRoutes.POST("/:id/activities", activities.Create)
}
