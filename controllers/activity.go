package controllers

import (
	"net/http"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// ActivityController 商机活动接口
type ActivityController struct {
	activities *service.ActivityService
}

// NewActivityController 创建 ActivityController
func NewActivityController(activities *service.ActivityService) *ActivityController {
	return &ActivityController{activities: activities}
}

// List 获取商机的活动记录
func (ctl *ActivityController) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	dealID, ok := pathID(c, "Deal")
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := ctl.activities.ListForDeal(c.Request.Context(), actor, dealID, page)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, result, "")
}

// Create 添加评论
func (ctl *ActivityController) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	dealID, ok := pathID(c, "Deal")
	if !ok {
		return
	}
	var in models.ActivityInput
	if !bindJSON(c, &in) {
		return
	}
	text, err := service.CommentText(in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	activity, err := ctl.activities.CreateComment(c.Request.Context(), actor, dealID, text)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, activity, "", http.StatusCreated)
}
