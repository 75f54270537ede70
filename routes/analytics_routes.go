package routes

import (
	"github.com/BerniceZTT/crm_pipeline/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAnalyticsRoutes 注册分析路由
func RegisterAnalyticsRoutes(router *gin.RouterGroup, ctl *controllers.AnalyticsController) {
	analyticsRoutes := router.Group("/analytics/deals")

	analyticsRoutes.GET("/summary", ctl.Summary)
	analyticsRoutes.GET("/funnel", ctl.Funnel)
}
