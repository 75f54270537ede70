// Package memstore 进程内存储，实现与MongoDB仓储相同的接口，用于本地运行和测试。
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store 全部实体的内存状态
type Store struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	organizations map[primitive.ObjectID]models.Organization
	memberships   map[primitive.ObjectID]models.Membership
	contacts      map[primitive.ObjectID]models.Contact
	deals         map[primitive.ObjectID]models.Deal
	tasks         map[primitive.ObjectID]models.Task
	activities    map[primitive.ObjectID]models.Activity
	operationLogs []models.OperationLog
}

// New 创建空存储
func New() *Store {
	return &Store{
		users:         map[primitive.ObjectID]models.User{},
		organizations: map[primitive.ObjectID]models.Organization{},
		memberships:   map[primitive.ObjectID]models.Membership{},
		contacts:      map[primitive.ObjectID]models.Contact{},
		deals:         map[primitive.ObjectID]models.Deal{},
		tasks:         map[primitive.ObjectID]models.Task{},
		activities:    map[primitive.ObjectID]models.Activity{},
	}
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func paginate[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

// newestFirst 按创建时间倒序，时间相同按ID倒序
func newestFirst(ti, tj time.Time, idi, idj primitive.ObjectID) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi.Hex() > idj.Hex()
}

// Users 用户仓储视图
func (s *Store) Users() *Users { return &Users{s} }

// Users 用户仓储
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	ensureID(&u.ID)
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// Organizations 组织仓储视图
func (s *Store) Organizations() *Organizations { return &Organizations{s} }

// Organizations 组织仓储
type Organizations struct{ s *Store }

func (r *Organizations) Create(_ context.Context, o *models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&o.ID)
	r.s.organizations[o.ID] = *o
	return nil
}

func (r *Organizations) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Organization{}
	for _, id := range ids {
		if o, ok := r.s.organizations[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// Memberships 成员关系仓储视图
func (s *Store) Memberships() *Memberships { return &Memberships{s} }

// Memberships 成员关系仓储
type Memberships struct{ s *Store }

func (r *Memberships) Create(_ context.Context, m *models.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.memberships {
		if existing.OrganizationID == m.OrganizationID && existing.UserID == m.UserID {
			return repository.ErrDuplicate
		}
	}
	ensureID(&m.ID)
	r.s.memberships[m.ID] = *m
	return nil
}

func (r *Memberships) Find(_ context.Context, userID, orgID primitive.ObjectID) (*models.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.memberships {
		if m.UserID == userID && m.OrganizationID == orgID {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Memberships) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Membership{}
	for _, m := range r.s.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Contacts 联系人仓储视图
func (s *Store) Contacts() *Contacts { return &Contacts{s} }

// Contacts 联系人仓储
type Contacts struct{ s *Store }

func (r *Contacts) Create(_ context.Context, c *models.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&c.ID)
	r.s.contacts[c.ID] = *c
	return nil
}

func (r *Contacts) FindInOrganization(_ context.Context, id, orgID primitive.ObjectID) (*models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contacts[id]
	if !ok || c.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Contacts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Contact{}
	for _, id := range ids {
		if c, ok := r.s.contacts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Contacts) List(_ context.Context, f models.ContactFilter) ([]models.Contact, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	var out []models.Contact
	for _, c := range r.s.contacts {
		if c.OrganizationID != f.OrganizationID {
			continue
		}
		if f.OwnerID != nil && c.OwnerID != *f.OwnerID {
			continue
		}
		if search != "" {
			email := ""
			if c.Email != nil {
				email = strings.ToLower(*c.Email)
			}
			if !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(email, search) {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return paginate(out, f.Skip, f.Limit), int64(len(out)), nil
}

func (r *Contacts) Update(_ context.Context, c *models.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.contacts[c.ID]
	if !ok || existing.OrganizationID != c.OrganizationID {
		return repository.ErrNotFound
	}
	r.s.contacts[c.ID] = *c
	return nil
}

func (r *Contacts) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

// GetDatabaseStatus 各集合的记录数
func (s *Store) GetDatabaseStatus(_ context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"users":            map[string]interface{}{"count": len(s.users)},
		"organizations":    map[string]interface{}{"count": len(s.organizations)},
		"memberships":      map[string]interface{}{"count": len(s.memberships)},
		"contacts":         map[string]interface{}{"count": len(s.contacts)},
		"deals":            map[string]interface{}{"count": len(s.deals)},
		"tasks":            map[string]interface{}{"count": len(s.tasks)},
		"activities":       map[string]interface{}{"count": len(s.activities)},
		"apiOperationLogs": map[string]interface{}{"count": len(s.operationLogs)},
	}, nil
}
