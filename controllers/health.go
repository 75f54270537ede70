package controllers

import (
	"context"
	"net/http"

	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// StatusReporter 返回存储的状态信息
type StatusReporter interface {
	GetDatabaseStatus(ctx context.Context) (map[string]interface{}, error)
}

// HealthController 健康检查
type HealthController struct {
	store StatusReporter
}

// NewHealthController 创建 HealthController
func NewHealthController(store StatusReporter) *HealthController {
	return &HealthController{store: store}
}

// Health 存活检查
func (ctl *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBStatus 数据库状态
func (ctl *HealthController) DBStatus(c *gin.Context) {
	status, err := ctl.store.GetDatabaseStatus(c.Request.Context())
	if err != nil {
		utils.Logger.Error().Err(err).Msg("获取数据库状态失败")
		utils.ErrorResponse(c, "Failed to get database status", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, status)
}
