package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BerniceZTT/crm_pipeline/cache"
	"github.com/BerniceZTT/crm_pipeline/cache/lru"
	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/repository/memstore"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// countingStats 统计聚合查询次数，用于判断是否命中缓存
type countingStats struct {
	DealStatsRepository
	summaryCalls atomic.Int64
	funnelCalls  atomic.Int64
}

func (c *countingStats) StatusTotals(ctx context.Context, orgID primitive.ObjectID) ([]models.StatusTotal, error) {
	c.summaryCalls.Add(1)
	return c.DealStatsRepository.StatusTotals(ctx, orgID)
}

func (c *countingStats) StageStatusCounts(ctx context.Context, orgID primitive.ObjectID) ([]models.StageStatusCount, error) {
	c.funnelCalls.Add(1)
	return c.DealStatsRepository.StageStatusCounts(ctx, orgID)
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	now   time.Time
	store *memstore.Store
	cache *lru.Cache
	stats *countingStats

	members    *MembershipResolver
	contacts   *ContactService
	deals      *DealService
	tasks      *TaskService
	activities *ActivityService
	analytics  *AnalyticsService

	org     primitive.ObjectID
	owner   Actor
	admin   Actor
	manager Actor
	member  Actor
	member2 Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		now:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		store: memstore.New(),
	}
	c, err := lru.New(128)
	if err != nil {
		t.Fatal(err)
	}
	f.cache = c
	f.cache.SetClock(func() time.Time { return f.now })
	f.stats = &countingStats{DealStatsRepository: f.store.Deals()}

	deals := f.store.Deals()
	f.members = NewMembershipResolver(f.store.Memberships())
	f.activities = NewActivityService(deals, f.store.Activities(), f.store.Users())
	f.analytics = NewAnalyticsService(f.stats, cache.Static(f.cache))
	f.contacts = NewContactService(f.store.Contacts(), deals, f.store.Users())
	f.deals = NewDealService(deals, f.store.Contacts(), f.store.Users(), f.activities, f.analytics, memstore.Transactor{})
	f.tasks = NewTaskService(f.store.Tasks(), deals, f.activities, memstore.Transactor{})

	clock := func() time.Time { return f.now }
	f.activities.SetClock(clock)
	f.analytics.SetClock(clock)
	f.contacts.SetClock(clock)
	f.deals.SetClock(clock)
	f.tasks.SetClock(clock)

	f.org = f.newOrg("Acme")
	f.owner = f.join(f.org, "Olivia Owner", models.RoleOwner)
	f.admin = f.join(f.org, "Adam Admin", models.RoleAdmin)
	f.manager = f.join(f.org, "Mia Manager", models.RoleManager)
	f.member = f.join(f.org, "Max Member", models.RoleMember)
	f.member2 = f.join(f.org, "Nia Member", models.RoleMember)
	return f
}

func (f *fixture) newOrg(name string) primitive.ObjectID {
	org := &models.Organization{Name: name, CreatedAt: f.now}
	if err := f.store.Organizations().Create(f.ctx, org); err != nil {
		f.t.Fatal(err)
	}
	return org.ID
}

func (f *fixture) join(orgID primitive.ObjectID, name string, role models.Role) Actor {
	u := &models.User{Email: primitive.NewObjectID().Hex() + "@example.com", Name: name, CreatedAt: f.now}
	if err := f.store.Users().Create(f.ctx, u); err != nil {
		f.t.Fatal(err)
	}
	m := &models.Membership{OrganizationID: orgID, UserID: u.ID, Role: role, CreatedAt: f.now}
	if err := f.store.Memberships().Create(f.ctx, m); err != nil {
		f.t.Fatal(err)
	}
	return Actor{OrganizationID: orgID, UserID: u.ID, Role: role}
}

func (f *fixture) contact(actor Actor, name string) *models.ContactView {
	f.t.Helper()
	c, err := f.contacts.Create(f.ctx, actor, models.ContactInput{Name: name})
	if err != nil {
		f.t.Fatal(err)
	}
	return c
}

func (f *fixture) deal(actor Actor, in models.DealInput) *models.DealView {
	f.t.Helper()
	if in.ContactID.IsZero() {
		in.ContactID = f.contact(actor, "Contact for "+in.Title).ID
	}
	d, err := f.deals.Create(f.ctx, actor, in)
	if err != nil {
		f.t.Fatal(err)
	}
	return d
}

func (f *fixture) activitiesOf(dealID primitive.ObjectID) []models.Activity {
	f.t.Helper()
	items, _, err := f.store.Activities().ListByDeal(f.ctx, dealID, 0, 0)
	if err != nil {
		f.t.Fatal(err)
	}
	return items
}

func money(s string) *models.Money {
	m := models.MustMoney(s)
	return &m
}

func status(s models.DealStatus) *models.DealStatus { return &s }

func stage(s models.DealStage) *models.DealStage { return &s }

func str(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func kind(err error) utils.ErrorKind {
	for _, k := range []utils.ErrorKind{
		utils.KindNotFound,
		utils.KindAccessDenied,
		utils.KindPermissionDenied,
		utils.KindValidation,
		utils.KindInvalidState,
		utils.KindConflict,
	} {
		if utils.IsKind(err, k) {
			return k
		}
	}
	return ""
}
