package controllers

import (
	"net/http"
	"strconv"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/service"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// TaskController 任务接口
type TaskController struct {
	tasks *service.TaskService
}

// NewTaskController 创建 TaskController
func NewTaskController(tasks *service.TaskService) *TaskController {
	return &TaskController{tasks: tasks}
}

// List 获取任务列表
func (ctl *TaskController) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	dealID, ok := optionalID(c, "deal_id")
	if !ok {
		return
	}
	dueBefore, ok := optionalTime(c, "due_before")
	if !ok {
		return
	}
	dueAfter, ok := optionalTime(c, "due_after")
	if !ok {
		return
	}
	onlyOpen := false
	if raw := c.Query("only_open"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(utils.NewValidationError("only_open must be a boolean"))
			return
		}
		onlyOpen = v
	}

	result, err := ctl.tasks.List(c.Request.Context(), actor, service.TaskQuery{
		DealID:      dealID,
		OnlyOpen:    onlyOpen,
		DueBefore:   dueBefore,
		DueAfter:    dueAfter,
		PageRequest: page,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, result, "")
}

// Create 创建任务
func (ctl *TaskController) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var in models.TaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := ctl.tasks.Create(c.Request.Context(), actor, in)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, task, "任务创建成功", http.StatusCreated)
}

// Update 更新任务
func (ctl *TaskController) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Task")
	if !ok {
		return
	}
	var ch models.TaskChanges
	if !bindJSON(c, &ch) {
		return
	}
	task, err := ctl.tasks.Update(c.Request.Context(), actor, id, ch)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, task, "任务更新成功")
}

// Delete 删除任务
func (ctl *TaskController) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Task")
	if !ok {
		return
	}
	if err := ctl.tasks.Delete(c.Request.Context(), actor, id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "任务删除成功")
}
