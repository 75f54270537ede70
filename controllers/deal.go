package controllers

import (
	"net/http"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// DealController 商机接口
type DealController struct {
	deals *service.DealService
}

// NewDealController 创建 DealController
func NewDealController(deals *service.DealService) *DealController {
	return &DealController{deals: deals}
}

// List 获取商机列表，status 可重复或以逗号分隔
func (ctl *DealController) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	owner, ok := optionalID(c, "owner_id")
	if !ok {
		return
	}
	minAmount, ok := optionalMoney(c, "min_amount")
	if !ok {
		return
	}
	maxAmount, ok := optionalMoney(c, "max_amount")
	if !ok {
		return
	}

	q := service.DealQuery{
		OwnerID:     owner,
		MinAmount:   minAmount,
		MaxAmount:   maxAmount,
		OrderBy:     c.Query("order_by"),
		Order:       c.Query("order"),
		PageRequest: page,
	}
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				q.Statuses = append(q.Statuses, models.DealStatus(s))
			}
		}
	}
	if stage := strings.TrimSpace(c.Query("stage")); stage != "" {
		st := models.DealStage(stage)
		q.Stage = &st
	}

	result, err := ctl.deals.List(c.Request.Context(), actor, q)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, result, "")
}

// Create 创建商机
func (ctl *DealController) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var in models.DealInput
	if !bindJSON(c, &in) {
		return
	}
	deal, err := ctl.deals.Create(c.Request.Context(), actor, in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "商机创建成功", http.StatusCreated)
}

// Get 获取商机详情
func (ctl *DealController) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Deal")
	if !ok {
		return
	}
	deal, err := ctl.deals.Get(c.Request.Context(), actor, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "")
}

// Update 部分更新商机
func (ctl *DealController) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Deal")
	if !ok {
		return
	}
	var ch models.DealChanges
	if !bindJSON(c, &ch) {
		return
	}
	deal, err := ctl.deals.Update(c.Request.Context(), actor, id, ch)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "商机更新成功")
}

// Delete 删除商机
func (ctl *DealController) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Deal")
	if !ok {
		return
	}
	if err := ctl.deals.Delete(c.Request.Context(), actor, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "商机删除成功")
}
