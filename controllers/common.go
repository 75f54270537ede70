package controllers

import (
	"strings"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorFrom 由组织上下文构造当前操作者
func actorFrom(c *gin.Context) (service.Actor, bool) {
	tenant, err := utils.GetTenant(c)
	if err != nil {
		utils.HandleError(c, err)
		return service.Actor{}, false
	}
	return service.Actor{
		OrganizationID: tenant.OrganizationID,
		UserID:         tenant.UserID,
		Role:           tenant.Role,
	}, true
}

// bindJSON 绑定失败时交给 ErrorHandler 输出 400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		utils.Logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("请求体校验失败")
		_ = c.Error(utils.NewValidationError("Invalid request body: " + err.Error()))
		return false
	}
	return true
}

// bindPage 解析 page/page_size
func bindPage(c *gin.Context) (models.PageRequest, bool) {
	var page models.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		_ = c.Error(utils.NewValidationError("Invalid paging parameters"))
		return page, false
	}
	if page.Page < 0 || page.PageSize < 0 {
		_ = c.Error(utils.NewValidationError("Invalid paging parameters"))
		return page, false
	}
	return page, true
}

// pathID 解析路径中的ID
func pathID(c *gin.Context, resource string) (primitive.ObjectID, bool) {
	id, err := utils.ParseObjectID(c.Param("id"), resource)
	if err != nil {
		utils.HandleError(c, err)
		return id, false
	}
	return id, true
}

// optionalID 解析可选的查询ID参数
func optionalID(c *gin.Context, key string) (*primitive.ObjectID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		_ = c.Error(utils.NewValidationError("Invalid " + key))
		return nil, false
	}
	return &id, true
}

// optionalTime 解析 RFC3339 时间参数
func optionalTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		_ = c.Error(utils.NewValidationError(key + " must be an RFC3339 timestamp"))
		return nil, false
	}
	return &t, true
}

// optionalMoney 解析金额参数
func optionalMoney(c *gin.Context, key string) (*models.Money, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	m, err := models.MoneyFromString(raw)
	if err != nil {
		_ = c.Error(utils.NewValidationError("Invalid " + key))
		return nil, false
	}
	return &m, true
}
