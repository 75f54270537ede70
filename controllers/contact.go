package controllers

import (
	"net/http"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// ContactController 联系人接口
type ContactController struct {
	contacts *service.ContactService
}

// NewContactController 创建 ContactController
func NewContactController(contacts *service.ContactService) *ContactController {
	return &ContactController{contacts: contacts}
}

// List 获取联系人列表
func (ctl *ContactController) List(c *gin.Context) {
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

	result, err := ctl.contacts.List(c.Request.Context(), actor, service.ContactQuery{
		Search:      c.Query("search"),
		OwnerID:     owner,
		PageRequest: page,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, result, "")
}

// Create 创建联系人
func (ctl *ContactController) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var in models.ContactInput
	if !bindJSON(c, &in) {
		return
	}
	contact, err := ctl.contacts.Create(c.Request.Context(), actor, in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "联系人创建成功", http.StatusCreated)
}

// Get 获取联系人详情
func (ctl *ContactController) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Contact")
	if !ok {
		return
	}
	contact, err := ctl.contacts.Get(c.Request.Context(), actor, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "")
}

// Update 更新联系人
func (ctl *ContactController) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Contact")
	if !ok {
		return
	}
	var in models.ContactInput
	if !bindJSON(c, &in) {
		return
	}
	contact, err := ctl.contacts.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "联系人更新成功")
}

// Delete 删除联系人
func (ctl *ContactController) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Contact")
	if !ok {
		return
	}
	if err := ctl.contacts.Delete(c.Request.Context(), actor, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "联系人删除成功")
}
