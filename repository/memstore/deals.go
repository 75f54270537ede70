package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/repository"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deals 商机仓储视图，同时实现分析聚合
func (s *Store) Deals() *Deals { return &Deals{s} }

// Deals 商机仓储
type Deals struct{ s *Store }

func (r *Deals) Create(_ context.Context, d *models.Deal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&d.ID)
	r.s.deals[d.ID] = *d
	return nil
}

func (r *Deals) FindInOrganization(_ context.Context, id, orgID primitive.ObjectID) (*models.Deal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.deals[id]
	if !ok || d.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *Deals) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Deal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Deal{}
	for _, id := range ids {
		if d, ok := r.s.deals[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func amountOf(d models.Deal) decimal.Decimal {
	if d.Amount == nil {
		return decimal.Zero
	}
	return d.Amount.Decimal
}

func (r *Deals) List(_ context.Context, f models.DealFilter) ([]models.Deal, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Deal
	for _, d := range r.s.deals {
		if d.OrganizationID != f.OrganizationID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, d.Status) {
			continue
		}
		if f.Stage != nil && d.Stage != *f.Stage {
			continue
		}
		if f.OwnerID != nil && d.OwnerID != *f.OwnerID {
			continue
		}
		// 与Mongo一致：金额为空的记录不满足范围条件
		if f.MinAmount != nil && (d.Amount == nil || d.Amount.LessThan(f.MinAmount.Decimal)) {
			continue
		}
		if f.MaxAmount != nil && (d.Amount == nil || d.Amount.GreaterThan(f.MaxAmount.Decimal)) {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.OrderBy == models.DealOrderAmount {
			if c := amountOf(a).Cmp(amountOf(b)); c != 0 {
				return (c < 0) == f.Ascending
			}
		} else if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) == f.Ascending
		}
		return (a.ID.Hex() < b.ID.Hex()) == f.Ascending
	})
	return paginate(out, f.Skip, f.Limit), int64(len(out)), nil
}

func containsStatus(set []models.DealStatus, s models.DealStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (r *Deals) Update(_ context.Context, id primitive.ObjectID, ch models.DealChanges) (*models.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ch.Title != nil {
		d.Title = *ch.Title
	}
	if ch.Amount != nil {
		amount := *ch.Amount
		d.Amount = &amount
	}
	if ch.Currency != nil {
		d.Currency = *ch.Currency
	}
	if ch.Status != nil {
		d.Status = *ch.Status
	}
	if ch.Stage != nil {
		d.Stage = *ch.Stage
	}
	if ch.Description != nil {
		desc := *ch.Description
		d.Description = &desc
	}
	d.UpdatedAt = ch.UpdatedAt
	r.s.deals[id] = d
	return &d, nil
}

func (r *Deals) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.deals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.deals, id)
	return nil
}

func (r *Deals) CountByContact(_ context.Context, orgID, contactID primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, d := range r.s.deals {
		if d.OrganizationID == orgID && d.ContactID == contactID {
			n++
		}
	}
	return n, nil
}

func (r *Deals) StatusTotals(_ context.Context, orgID primitive.ObjectID) ([]models.StatusTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byStatus := map[models.DealStatus]*models.StatusTotal{}
	for _, d := range r.s.deals {
		if d.OrganizationID != orgID {
			continue
		}
		t, ok := byStatus[d.Status]
		if !ok {
			t = &models.StatusTotal{Status: d.Status, Amount: models.NewMoney(decimal.Zero)}
			byStatus[d.Status] = t
		}
		t.Count++
		t.Amount = models.NewMoney(t.Amount.Add(amountOf(d)))
	}
	out := make([]models.StatusTotal, 0, len(byStatus))
	for _, t := range byStatus {
		out = append(out, *t)
	}
	return out, nil
}

func (r *Deals) AverageWonAmount(_ context.Context, orgID primitive.ObjectID) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	n := 0
	for _, d := range r.s.deals {
		if d.OrganizationID == orgID && d.Status == models.DealStatusWon && d.Amount.IsPositive() {
			sum = sum.Add(d.Amount.Decimal)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, nil
	}
	return sum.Div(decimal.NewFromInt(int64(n))), nil
}

func (r *Deals) CountNewSince(_ context.Context, orgID primitive.ObjectID, since time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, d := range r.s.deals {
		if d.OrganizationID == orgID && d.Status == models.DealStatusNew && !d.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Deals) StageStatusCounts(_ context.Context, orgID primitive.ObjectID) ([]models.StageStatusCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type key struct {
		stage  models.DealStage
		status models.DealStatus
	}
	counts := map[key]int64{}
	for _, d := range r.s.deals {
		if d.OrganizationID == orgID {
			counts[key{d.Stage, d.Status}]++
		}
	}
	out := make([]models.StageStatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.StageStatusCount{Stage: k.stage, Status: k.status, Count: n})
	}
	return out, nil
}

// Tasks 任务仓储视图
func (s *Store) Tasks() *Tasks { return &Tasks{s} }

// Tasks 任务仓储
type Tasks struct{ s *Store }

func (r *Tasks) Create(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&t.ID)
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *Tasks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *Tasks) List(_ context.Context, f models.TaskFilter) ([]models.Task, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Task
	for _, t := range r.s.tasks {
		d, ok := r.s.deals[t.DealID]
		if !ok || d.OrganizationID != f.OrganizationID {
			continue
		}
		if f.DealID != nil && t.DealID != *f.DealID {
			continue
		}
		if f.OnlyOpen && t.IsDone {
			continue
		}
		if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
			continue
		}
		if f.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueAfter)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return paginate(out, f.Skip, f.Limit), int64(len(out)), nil
}

func (r *Tasks) Update(_ context.Context, id primitive.ObjectID, ch models.TaskChanges) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ch.Title != nil {
		t.Title = *ch.Title
	}
	if ch.Description != nil {
		desc := *ch.Description
		t.Description = &desc
	}
	if ch.DueDate != nil {
		due := *ch.DueDate
		t.DueDate = &due
	}
	if ch.IsDone != nil {
		t.IsDone = *ch.IsDone
	}
	r.s.tasks[id] = t
	return &t, nil
}

func (r *Tasks) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

// Activities 活动仓储视图
func (s *Store) Activities() *Activities { return &Activities{s} }

// Activities 活动仓储
type Activities struct{ s *Store }

func (r *Activities) Create(_ context.Context, a *models.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&a.ID)
	r.s.activities[a.ID] = *a
	return nil
}

func (r *Activities) ListByDeal(_ context.Context, dealID primitive.ObjectID, skip, limit int64) ([]models.Activity, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Activity
	for _, a := range r.s.activities {
		if a.DealID == dealID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return paginate(out, skip, limit), int64(len(out)), nil
}

// OperationLogs 操作日志仓储视图
func (s *Store) OperationLogs() *OperationLogs { return &OperationLogs{s} }

// OperationLogs 操作日志仓储
type OperationLogs struct{ s *Store }

func (r *OperationLogs) Create(_ context.Context, l *models.OperationLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.operationLogs = append(r.s.operationLogs, *l)
	return nil
}

// All 返回已记录的操作日志副本
func (r *OperationLogs) All() []models.OperationLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]models.OperationLog(nil), r.s.operationLogs...)
}

// Transactor 内存存储无回滚能力，直接执行
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
