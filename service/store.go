package service

import (
	"context"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 以下接口由 repository 包（MongoDB）和 repository/memstore 包实现。
// 查找类方法在记录不存在时返回 repository.ErrNotFound。

// UserRepository 用户存储
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// OrganizationRepository 组织存储
type OrganizationRepository interface {
	Create(ctx context.Context, o *models.Organization) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Organization, error)
}

// MembershipRepository 成员关系存储
type MembershipRepository interface {
	Create(ctx context.Context, m *models.Membership) error
	Find(ctx context.Context, userID, orgID primitive.ObjectID) (*models.Membership, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error)
}

// ContactRepository 联系人存储
type ContactRepository interface {
	Create(ctx context.Context, c *models.Contact) error
	FindInOrganization(ctx context.Context, id, orgID primitive.ObjectID) (*models.Contact, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Contact, error)
	List(ctx context.Context, f models.ContactFilter) ([]models.Contact, int64, error)
	Update(ctx context.Context, c *models.Contact) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DealRepository 商机存储
type DealRepository interface {
	Create(ctx context.Context, d *models.Deal) error
	FindInOrganization(ctx context.Context, id, orgID primitive.ObjectID) (*models.Deal, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Deal, error)
	List(ctx context.Context, f models.DealFilter) ([]models.Deal, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, ch models.DealChanges) (*models.Deal, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByContact(ctx context.Context, orgID, contactID primitive.ObjectID) (int64, error)
}

// DealStatsRepository 分析用的聚合查询
type DealStatsRepository interface {
	StatusTotals(ctx context.Context, orgID primitive.ObjectID) ([]models.StatusTotal, error)
	AverageWonAmount(ctx context.Context, orgID primitive.ObjectID) (decimal.Decimal, error)
	CountNewSince(ctx context.Context, orgID primitive.ObjectID, since time.Time) (int64, error)
	StageStatusCounts(ctx context.Context, orgID primitive.ObjectID) ([]models.StageStatusCount, error)
}

// TaskRepository 任务存储
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	List(ctx context.Context, f models.TaskFilter) ([]models.Task, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, ch models.TaskChanges) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ActivityRepository 活动存储
type ActivityRepository interface {
	Create(ctx context.Context, a *models.Activity) error
	ListByDeal(ctx context.Context, dealID primitive.ObjectID, skip, limit int64) ([]models.Activity, int64, error)
}

// OperationLogRepository 操作日志存储
type OperationLogRepository interface {
	Create(ctx context.Context, l *models.OperationLog) error
}

// Transactor 将状态变更与审计记录放在同一事务中
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock 当前时间，测试可替换
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
