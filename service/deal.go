package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/repository"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsInvalidator 商机写入后清理分析缓存
type AnalyticsInvalidator interface {
	InvalidateOrganization(ctx context.Context, orgID primitive.ObjectID) error
}

// DealService 商机生命周期：状态/阶段规则、权限、审计活动和缓存失效
type DealService struct {
	deals      DealRepository
	contacts   ContactRepository
	users      UserRepository
	activities *ActivityService
	analytics  AnalyticsInvalidator
	tx         Transactor
	now        Clock
}

// NewDealService 创建 DealService
func NewDealService(deals DealRepository, contacts ContactRepository, users UserRepository, activities *ActivityService, analytics AnalyticsInvalidator, tx Transactor) *DealService {
	return &DealService{
		deals:      deals,
		contacts:   contacts,
		users:      users,
		activities: activities,
		analytics:  analytics,
		tx:         tx,
		now:        systemClock,
	}
}

// SetClock 替换时钟
func (s *DealService) SetClock(now Clock) {
	s.now = now
}

// DealQuery 商机列表查询参数
type DealQuery struct {
	Statuses  []models.DealStatus
	Stage     *models.DealStage
	MinAmount *models.Money
	MaxAmount *models.Money
	OwnerID   *primitive.ObjectID
	OrderBy   string
	Order     string
	models.PageRequest
}

// Create 联系人必须属于同一组织，创建后追加 system 活动
func (s *DealService) Create(ctx context.Context, actor Actor, in models.DealInput) (*models.DealView, error) {
	deal, err := s.newDeal(actor, in)
	if err != nil {
		return nil, err
	}

	if _, err := s.contacts.FindInOrganization(ctx, in.ContactID, actor.OrganizationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewValidationError("Contact not found in organization")
		}
		return nil, fmt.Errorf("load contact: %w", err)
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.deals.Create(ctx, deal); err != nil {
			return fmt.Errorf("create deal: %w", err)
		}
		owner := deal.OwnerID
		_, err := s.activities.Append(ctx, deal.ID, &owner, models.ActivitySystem, map[string]interface{}{
			"message": "Deal created",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, actor.OrganizationID)
	utils.Logger.Info().
		Str("deal_id", deal.ID.Hex()).
		Str("organization_id", actor.OrganizationID.Hex()).
		Msg("商机已创建")

	return s.view(ctx, deal)
}

func (s *DealService) newDeal(actor Actor, in models.DealInput) (*models.Deal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, utils.NewValidationError("Title is required")
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.DealStatusNew
	}
	if !status.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("Unknown status %q", status))
	}
	stage := in.Stage
	if stage == "" {
		stage = models.DealStageQualification
	}
	if !stage.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("Unknown stage %q", stage))
	}
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}
	if status == models.DealStatusWon && !in.Amount.IsPositive() {
		return nil, utils.NewInvalidStateError("Cannot close deal with zero amount")
	}

	now := s.now()
	return &models.Deal{
		OrganizationID: actor.OrganizationID,
		ContactID:      in.ContactID,
		OwnerID:        actor.UserID,
		Title:          title,
		Amount:         in.Amount,
		Currency:       currency,
		Status:         status,
		Stage:          stage,
		Description:    in.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func normalizeCurrency(c string) (string, error) {
	if c == "" {
		return models.DefaultCurrency, nil
	}
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return "", utils.NewValidationError("Currency must be a 3-letter code")
	}
	return c, nil
}

func checkAmount(m *models.Money) error {
	if m != nil && m.IsNegative() {
		return utils.NewValidationError("Amount cannot be negative")
	}
	return nil
}

// Get 读取单个商机
func (s *DealService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.DealView, error) {
	deal, err := s.deals.FindInOrganization(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, notFoundOr(err, "Deal not found")
	}
	return s.view(ctx, deal)
}

// Update 校验权限、赢单金额和阶段方向后更新，状态/阶段的每次实际变化各记录一条活动
func (s *DealService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, ch models.DealChanges) (*models.DealView, error) {
	deal, err := s.deals.FindInOrganization(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, notFoundOr(err, "Deal not found")
	}
	if err := Authorize(ActionUpdateDeal, actor.Role, actor.UserID, deal.OwnerID); err != nil {
		return nil, err
	}
	if err := validateDealChanges(&ch); err != nil {
		return nil, err
	}

	statusChanged := ch.Status != nil && *ch.Status != deal.Status
	if statusChanged && *ch.Status == models.DealStatusWon {
		// 以请求时已保存的金额为准，同一请求中的新金额不计入
		if !deal.Amount.IsPositive() {
			return nil, utils.NewInvalidStateError("Cannot close deal with zero amount")
		}
	}

	stageChanged := ch.Stage != nil && *ch.Stage != deal.Stage
	if stageChanged && ch.Stage.Index() < deal.Stage.Index() && Decide(ActionMoveStageBackward, actor.Role) != Allow {
		return nil, utils.NewInvalidStateError("Cannot move stage backwards")
	}

	amountChanged := ch.Amount != nil && (deal.Amount == nil || !deal.Amount.Equal(ch.Amount.Decimal))

	ch.UpdatedAt = s.now()
	var updated *models.Deal
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.deals.Update(ctx, deal.ID, ch)
		if err != nil {
			return notFoundOr(err, "Deal not found")
		}
		author := actor.UserID
		if statusChanged {
			if _, err := s.activities.Append(ctx, deal.ID, &author, models.ActivityStatusChanged, map[string]interface{}{
				"old_status": string(deal.Status),
				"new_status": string(*ch.Status),
			}); err != nil {
				return err
			}
		}
		if stageChanged {
			if _, err := s.activities.Append(ctx, deal.ID, &author, models.ActivityStageChanged, map[string]interface{}{
				"old_stage": string(deal.Stage),
				"new_stage": string(*ch.Stage),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChanged || stageChanged || amountChanged {
		s.invalidate(ctx, actor.OrganizationID)
	}
	return s.view(ctx, updated)
}

func validateDealChanges(ch *models.DealChanges) error {
	if ch.Title != nil {
		title := strings.TrimSpace(*ch.Title)
		if title == "" {
			return utils.NewValidationError("Title cannot be empty")
		}
		ch.Title = &title
	}
	if ch.Currency != nil {
		c, err := normalizeCurrency(*ch.Currency)
		if err != nil {
			return err
		}
		ch.Currency = &c
	}
	if ch.Status != nil && !ch.Status.Valid() {
		return utils.NewValidationError(fmt.Sprintf("Unknown status %q", *ch.Status))
	}
	// 未知阶段一律拒绝，不参与阶段方向比较
	if ch.Stage != nil && !ch.Stage.Valid() {
		return utils.NewValidationError(fmt.Sprintf("Unknown stage %q", *ch.Stage))
	}
	return checkAmount(ch.Amount)
}

// List member 只能查看自己的商机
func (s *DealService) List(ctx context.Context, actor Actor, q DealQuery) (models.Page[models.DealView], error) {
	page := q.PageRequest.Normalize()

	owner, err := scopeOwner(actor, q.OwnerID)
	if err != nil {
		return models.Page[models.DealView]{}, err
	}
	for _, st := range q.Statuses {
		if !st.Valid() {
			return models.Page[models.DealView]{}, utils.NewValidationError(fmt.Sprintf("Unknown status %q", st))
		}
	}
	if q.Stage != nil && !q.Stage.Valid() {
		return models.Page[models.DealView]{}, utils.NewValidationError(fmt.Sprintf("Unknown stage %q", *q.Stage))
	}

	orderBy := q.OrderBy
	switch orderBy {
	case "":
		orderBy = models.DealOrderCreatedAt
	case models.DealOrderCreatedAt, models.DealOrderAmount:
	default:
		return models.Page[models.DealView]{}, utils.NewValidationError("order_by must be created_at or amount")
	}
	var asc bool
	switch q.Order {
	case "", "desc":
	case "asc":
		asc = true
	default:
		return models.Page[models.DealView]{}, utils.NewValidationError("order must be asc or desc")
	}

	deals, total, err := s.deals.List(ctx, models.DealFilter{
		OrganizationID: actor.OrganizationID,
		Statuses:       q.Statuses,
		Stage:          q.Stage,
		MinAmount:      q.MinAmount,
		MaxAmount:      q.MaxAmount,
		OwnerID:        owner,
		OrderBy:        orderBy,
		Ascending:      asc,
		Skip:           page.Skip(),
		Limit:          page.PageSize,
	})
	if err != nil {
		return models.Page[models.DealView]{}, fmt.Errorf("list deals: %w", err)
	}

	views, err := s.views(ctx, deals)
	if err != nil {
		return models.Page[models.DealView]{}, err
	}
	return models.NewPage(views, total, page), nil
}

// Delete member 只能删除自己的商机
func (s *DealService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	deal, err := s.deals.FindInOrganization(ctx, id, actor.OrganizationID)
	if err != nil {
		return notFoundOr(err, "Deal not found")
	}
	if err := Authorize(ActionDeleteDeal, actor.Role, actor.UserID, deal.OwnerID); err != nil {
		return err
	}
	if err := s.deals.Delete(ctx, deal.ID); err != nil {
		return notFoundOr(err, "Deal not found")
	}
	s.invalidate(ctx, actor.OrganizationID)
	return nil
}

// invalidate 缓存失效失败不影响写操作
func (s *DealService) invalidate(ctx context.Context, orgID primitive.ObjectID) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.InvalidateOrganization(ctx, orgID); err != nil {
		utils.Logger.Warn().Err(err).Str("organization_id", orgID.Hex()).Msg("清理分析缓存失败")
	}
}

func (s *DealService) view(ctx context.Context, d *models.Deal) (*models.DealView, error) {
	views, err := s.views(ctx, []models.Deal{*d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *DealService) views(ctx context.Context, deals []models.Deal) ([]models.DealView, error) {
	contactIDs := make([]primitive.ObjectID, 0, len(deals))
	ownerIDs := make([]primitive.ObjectID, 0, len(deals))
	for _, d := range deals {
		contactIDs = append(contactIDs, d.ContactID)
		ownerIDs = append(ownerIDs, d.OwnerID)
	}
	contacts, err := contactNames(ctx, s.contacts, contactIDs)
	if err != nil {
		return nil, err
	}
	owners, err := userNames(ctx, s.users, ownerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.DealView, 0, len(deals))
	for _, d := range deals {
		views = append(views, models.DealView{
			Deal:        d,
			ContactName: contacts[d.ContactID],
			OwnerName:   owners[d.OwnerID],
		})
	}
	return views, nil
}
