package routes

import (
	"github.com/BerniceZTT/crm_pipeline/controllers"
	"github.com/BerniceZTT/crm_pipeline/middleware"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的控制器与中间件
type Handlers struct {
	Tokens   *utils.TokenManager
	Resolver middleware.MembershipResolver

	Health        *controllers.HealthController
	Auth          *controllers.AuthController
	Organizations *controllers.OrganizationController
	Contacts      *controllers.ContactController
	Deals         *controllers.DealController
	Tasks         *controllers.TaskController
	Activities    *controllers.ActivityController
	Analytics     *controllers.AnalyticsController
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	// 健康检查路由
	router.GET("/api/health", h.Health.Health)
	router.GET("/api/db-status", h.Health.DBStatus)

	v1 := router.Group("/api/v1")
	RegisterAuthRoutes(v1, h.Auth)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(h.Tokens))
	RegisterOrganizationRoutes(authed, h.Organizations)

	// 以下路由需要 X-Organization-Id
	tenant := authed.Group("")
	tenant.Use(middleware.OrganizationMiddleware(h.Resolver))
	RegisterContactRoutes(tenant, h.Contacts)
	RegisterDealRoutes(tenant, h.Deals, h.Activities)
	RegisterTaskRoutes(tenant, h.Tasks)
	RegisterAnalyticsRoutes(tenant, h.Analytics)
}
