package controllers

import (
	"strconv"

	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// AnalyticsController 商机分析接口
type AnalyticsController struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsController 创建 AnalyticsController
func NewAnalyticsController(analytics *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// Summary 商机汇总，days 默认30
func (ctl *AnalyticsController) Summary(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	days := service.DefaultSummaryDays
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(utils.NewValidationError("days must be an integer"))
			return
		}
		days = v
	}
	summary, err := ctl.analytics.DealSummary(c.Request.Context(), actor.OrganizationID, days)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, summary, "")
}

// Funnel 商机漏斗
func (ctl *AnalyticsController) Funnel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	funnel, err := ctl.analytics.DealFunnel(c.Request.Context(), actor.OrganizationID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, funnel, "")
}
