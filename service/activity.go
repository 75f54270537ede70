package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityService 商机活动时间线
type ActivityService struct {
	deals      DealRepository
	activities ActivityRepository
	users      UserRepository
	now        Clock
}

// NewActivityService 创建 ActivityService
func NewActivityService(deals DealRepository, activities ActivityRepository, users UserRepository) *ActivityService {
	return &ActivityService{
		deals:      deals,
		activities: activities,
		users:      users,
		now:        systemClock,
	}
}

// Append 追加一条活动，供商机与任务的副作用使用，不对外暴露
func (s *ActivityService) Append(ctx context.Context, dealID primitive.ObjectID, authorID *primitive.ObjectID, typ models.ActivityType, payload map[string]interface{}) (*models.Activity, error) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	a := &models.Activity{
		DealID:    dealID,
		AuthorID:  authorID,
		Type:      typ,
		Payload:   payload,
		CreatedAt: s.now(),
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("append %s activity: %w", typ, err)
	}
	return a, nil
}

// CommentText 取出请求中的评论文本，其他类型只能由系统写入
func CommentText(in models.ActivityInput) (string, error) {
	if in.Type != models.ActivityComment {
		return "", utils.NewValidationError("Only comment activities can be created")
	}
	text, _ := in.Payload["text"].(string)
	return text, nil
}

// CreateComment 添加评论，文本去空白后不能为空
func (s *ActivityService) CreateComment(ctx context.Context, actor Actor, dealID primitive.ObjectID, text string) (*models.ActivityView, error) {
	if _, err := s.deals.FindInOrganization(ctx, dealID, actor.OrganizationID); err != nil {
		return nil, notFoundOr(err, "Deal not found")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.NewValidationError("Comment text cannot be empty")
	}

	author := actor.UserID
	a, err := s.Append(ctx, dealID, &author, models.ActivityComment, map[string]interface{}{"text": text})
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Activity{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListForDeal 最新的在前
func (s *ActivityService) ListForDeal(ctx context.Context, actor Actor, dealID primitive.ObjectID, page models.PageRequest) (models.Page[models.ActivityView], error) {
	page = page.Normalize()
	if _, err := s.deals.FindInOrganization(ctx, dealID, actor.OrganizationID); err != nil {
		return models.Page[models.ActivityView]{}, notFoundOr(err, "Deal not found")
	}

	items, total, err := s.activities.ListByDeal(ctx, dealID, page.Skip(), page.PageSize)
	if err != nil {
		return models.Page[models.ActivityView]{}, fmt.Errorf("list activities: %w", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return models.Page[models.ActivityView]{}, err
	}
	return models.NewPage(views, total, page), nil
}

func (s *ActivityService) views(ctx context.Context, items []models.Activity) ([]models.ActivityView, error) {
	var authorIDs []primitive.ObjectID
	for _, a := range items {
		if a.AuthorID != nil {
			authorIDs = append(authorIDs, *a.AuthorID)
		}
	}
	names, err := userNames(ctx, s.users, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ActivityView, 0, len(items))
	for _, a := range items {
		name := systemAuthorName
		if a.AuthorID != nil {
			name = names[*a.AuthorID]
		}
		views = append(views, models.ActivityView{Activity: a, AuthorName: name})
	}
	return views, nil
}

// SetClock 替换时钟
func (s *ActivityService) SetClock(now Clock) {
	s.now = now
}
