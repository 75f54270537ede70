package controllers

import (
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// OrganizationController 组织目录
type OrganizationController struct {
	organizations *service.OrganizationService
}

// NewOrganizationController 创建 OrganizationController
func NewOrganizationController(organizations *service.OrganizationService) *OrganizationController {
	return &OrganizationController{organizations: organizations}
}

// ListMine 当前用户所属的组织
func (ctl *OrganizationController) ListMine(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	orgs, err := ctl.organizations.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, orgs, "")
}
