package routes

import (
	"github.com/BerniceZTT/crm_pipeline/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterOrganizationRoutes 注册组织相关路由
func RegisterOrganizationRoutes(router *gin.RouterGroup, ctl *controllers.OrganizationController) {
	router.GET("/organizations/me", ctl.ListMine)
}
