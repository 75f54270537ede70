package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService 商机任务
type TaskService struct {
	tasks      TaskRepository
	deals      DealRepository
	activities *ActivityService
	tx         Transactor
	now        Clock
}

// NewTaskService 创建 TaskService
func NewTaskService(tasks TaskRepository, deals DealRepository, activities *ActivityService, tx Transactor) *TaskService {
	return &TaskService{
		tasks:      tasks,
		deals:      deals,
		activities: activities,
		tx:         tx,
		now:        systemClock,
	}
}

// SetClock 替换时钟
func (s *TaskService) SetClock(now Clock) {
	s.now = now
}

// TaskQuery 任务列表查询参数
type TaskQuery struct {
	DealID    *primitive.ObjectID
	OnlyOpen  bool
	DueBefore *time.Time
	DueAfter  *time.Time
	models.PageRequest
}

// checkDue 截止时间不能早于当前时间，等于当前时间允许
func (s *TaskService) checkDue(due *time.Time) error {
	if due != nil && due.Before(s.now()) {
		return utils.NewInvalidStateError("Due date cannot be in the past")
	}
	return nil
}

// Create 商机不在本组织时与不存在同样返回 NotFound
func (s *TaskService) Create(ctx context.Context, actor Actor, in models.TaskInput) (*models.TaskView, error) {
	deal, err := s.deals.FindInOrganization(ctx, in.DealID, actor.OrganizationID)
	if err != nil {
		return nil, notFoundOr(err, "Deal not found")
	}
	if err := Authorize(ActionCreateTask, actor.Role, actor.UserID, deal.OwnerID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, utils.NewValidationError("Title is required")
	}
	if err := s.checkDue(in.DueDate); err != nil {
		return nil, err
	}

	task := &models.Task{
		DealID:      deal.ID,
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		CreatedAt:   s.now(),
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		author := actor.UserID
		_, err := s.activities.Append(ctx, deal.ID, &author, models.ActivityTaskCreated, map[string]interface{}{
			"task_id":    task.ID.Hex(),
			"task_title": task.Title,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &models.TaskView{Task: *task, DealTitle: deal.Title}, nil
}

// List 通过商机关联组织过滤
func (s *TaskService) List(ctx context.Context, actor Actor, q TaskQuery) (models.Page[models.TaskView], error) {
	page := q.PageRequest.Normalize()

	tasks, total, err := s.tasks.List(ctx, models.TaskFilter{
		OrganizationID: actor.OrganizationID,
		DealID:         q.DealID,
		OnlyOpen:       q.OnlyOpen,
		DueBefore:      q.DueBefore,
		DueAfter:       q.DueAfter,
		Skip:           page.Skip(),
		Limit:          page.PageSize,
	})
	if err != nil {
		return models.Page[models.TaskView]{}, fmt.Errorf("list tasks: %w", err)
	}

	dealIDs := make([]primitive.ObjectID, 0, len(tasks))
	for _, t := range tasks {
		dealIDs = append(dealIDs, t.DealID)
	}
	deals, err := s.deals.FindByIDs(ctx, uniqueIDs(dealIDs))
	if err != nil {
		return models.Page[models.TaskView]{}, fmt.Errorf("load deals: %w", err)
	}
	titles := make(map[primitive.ObjectID]string, len(deals))
	for _, d := range deals {
		titles[d.ID] = d.Title
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, models.TaskView{Task: t, DealTitle: titles[t.DealID]})
	}
	return models.NewPage(views, total, page), nil
}

// load 任务及其商机都必须属于本组织
func (s *TaskService) load(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Task, *models.Deal, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "Task not found")
	}
	deal, err := s.deals.FindInOrganization(ctx, task.DealID, actor.OrganizationID)
	if err != nil {
		return nil, nil, notFoundOr(err, "Task not found")
	}
	return task, deal, nil
}

// Update 部分更新任务
func (s *TaskService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, ch models.TaskChanges) (*models.TaskView, error) {
	_, deal, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(ActionUpdateTask, actor.Role, actor.UserID, deal.OwnerID); err != nil {
		return nil, err
	}
	if ch.Title != nil {
		title := strings.TrimSpace(*ch.Title)
		if title == "" {
			return nil, utils.NewValidationError("Title cannot be empty")
		}
		ch.Title = &title
	}
	if err := s.checkDue(ch.DueDate); err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, ch)
	if err != nil {
		return nil, notFoundOr(err, "Task not found")
	}
	return &models.TaskView{Task: *updated, DealTitle: deal.Title}, nil
}

// Delete 删除任务
func (s *TaskService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	_, deal, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := Authorize(ActionDeleteTask, actor.Role, actor.UserID, deal.OwnerID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Task not found")
	}
	return nil
}
