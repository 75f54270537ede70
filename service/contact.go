package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactService 联系人
type ContactService struct {
	contacts ContactRepository
	deals    DealRepository
	users    UserRepository
	now      Clock
}

// NewContactService 创建 ContactService
func NewContactService(contacts ContactRepository, deals DealRepository, users UserRepository) *ContactService {
	return &ContactService{contacts: contacts, deals: deals, users: users, now: systemClock}
}

// SetClock 替换时钟
func (s *ContactService) SetClock(now Clock) {
	s.now = now
}

// ContactQuery 联系人列表查询参数
type ContactQuery struct {
	Search  string
	OwnerID *primitive.ObjectID
	models.PageRequest
}

// Create 创建联系人，负责人为当前用户
func (s *ContactService) Create(ctx context.Context, actor Actor, in models.ContactInput) (*models.ContactView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.NewValidationError("Name is required")
	}
	c := &models.Contact{
		OrganizationID: actor.OrganizationID,
		OwnerID:        actor.UserID,
		Name:           name,
		Email:          in.Email,
		Phone:          in.Phone,
		CreatedAt:      s.now(),
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return s.view(ctx, c)
}

// Get 读取联系人
func (s *ContactService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.ContactView, error) {
	c, err := s.contacts.FindInOrganization(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, notFoundOr(err, "Contact not found")
	}
	return s.view(ctx, c)
}

// List member 只能查看自己的联系人
func (s *ContactService) List(ctx context.Context, actor Actor, q ContactQuery) (models.Page[models.ContactView], error) {
	page := q.PageRequest.Normalize()
	owner, err := scopeOwner(actor, q.OwnerID)
	if err != nil {
		return models.Page[models.ContactView]{}, err
	}

	contacts, total, err := s.contacts.List(ctx, models.ContactFilter{
		OrganizationID: actor.OrganizationID,
		OwnerID:        owner,
		Search:         strings.TrimSpace(q.Search),
		Skip:           page.Skip(),
		Limit:          page.PageSize,
	})
	if err != nil {
		return models.Page[models.ContactView]{}, fmt.Errorf("list contacts: %w", err)
	}
	views, err := s.views(ctx, contacts)
	if err != nil {
		return models.Page[models.ContactView]{}, err
	}
	return models.NewPage(views, total, page), nil
}

// Update 整体更新姓名、邮箱、电话
func (s *ContactService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, in models.ContactInput) (*models.ContactView, error) {
	c, err := s.contacts.FindInOrganization(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, notFoundOr(err, "Contact not found")
	}
	if err := Authorize(ActionUpdateContact, actor.Role, actor.UserID, c.OwnerID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.NewValidationError("Name is required")
	}
	c.Name = name
	c.Email = in.Email
	c.Phone = in.Phone
	if err := s.contacts.Update(ctx, c); err != nil {
		return nil, notFoundOr(err, "Contact not found")
	}
	return s.view(ctx, c)
}

// Delete 组织内任何成员都可删除；仍有商机引用时返回 Conflict
func (s *ContactService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	c, err := s.contacts.FindInOrganization(ctx, id, actor.OrganizationID)
	if err != nil {
		return notFoundOr(err, "Contact not found")
	}
	n, err := s.deals.CountByContact(ctx, actor.OrganizationID, c.ID)
	if err != nil {
		return fmt.Errorf("count deals for contact: %w", err)
	}
	if n > 0 {
		return utils.NewConflictError("Cannot delete contact with active deals")
	}
	if err := s.contacts.Delete(ctx, c.ID); err != nil {
		return notFoundOr(err, "Contact not found")
	}
	return nil
}

func (s *ContactService) view(ctx context.Context, c *models.Contact) (*models.ContactView, error) {
	views, err := s.views(ctx, []models.Contact{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ContactService) views(ctx context.Context, contacts []models.Contact) ([]models.ContactView, error) {
	ownerIDs := make([]primitive.ObjectID, 0, len(contacts))
	for _, c := range contacts {
		ownerIDs = append(ownerIDs, c.OwnerID)
	}
	owners, err := userNames(ctx, s.users, ownerIDs)
	if err != nil {
		return nil, err
	}
	views := make([]models.ContactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, models.ContactView{Contact: c, OwnerName: owners[c.OwnerID]})
	}
	return views, nil
}
