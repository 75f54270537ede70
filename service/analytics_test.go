package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/BerniceZTT/crm_pipeline/cache"
	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/matryer/is"
)

func TestDealSummary(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	f.deal(f.owner, models.DealInput{Title: "a", Amount: money("100")})
	f.deal(f.owner, models.DealInput{Title: "b", Amount: money("300"), Status: models.DealStatusWon})
	f.deal(f.owner, models.DealInput{Title: "c", Amount: money("500"), Status: models.DealStatusWon})
	f.deal(f.owner, models.DealInput{Title: "d", Status: models.DealStatusLost})

	// 超出统计窗口的新商机
	f.now = f.now.Add(-40 * 24 * time.Hour)
	f.deal(f.owner, models.DealInput{Title: "old"})
	f.now = f.now.Add(40 * 24 * time.Hour)

	s, err := f.analytics.DealSummary(f.ctx, f.org, 30)
	is.NoErr(err)
	is.Equal(s.StatusCounts[models.DealStatusNew], int64(2))
	is.Equal(s.StatusCounts[models.DealStatusWon], int64(2))
	is.Equal(s.StatusCounts[models.DealStatusLost], int64(1))
	_, present := s.StatusCounts[models.DealStatusInProgress]
	is.True(!present)
	is.Equal(s.AmountByStatus[models.DealStatusWon].String(), "800.00")
	is.Equal(s.AmountByStatus[models.DealStatusLost].String(), "0.00")
	is.Equal(s.AverageWonAmount, 400.0)
	is.Equal(s.NewDealsLastNDays, int64(1))
	is.Equal(s.DaysPeriod, 30)
}

func TestDealSummaryDays(t *testing.T) {
	f := newFixture(t)
	for _, days := range []int{0, -1, 366} {
		_, err := f.analytics.DealSummary(f.ctx, f.org, days)
		if !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("days=%d: expected validation error, got %v", days, err)
		}
	}
	for _, days := range []int{1, 365} {
		if _, err := f.analytics.DealSummary(f.ctx, f.org, days); err != nil {
			t.Fatalf("days=%d: %v", days, err)
		}
	}
}

func TestDealSummaryReadThrough(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	d := f.deal(f.owner, models.DealInput{Title: "a", Amount: money("100")})

	first, err := f.analytics.DealSummary(f.ctx, f.org, 30)
	is.NoErr(err)
	is.Equal(f.stats.summaryCalls.Load(), int64(1))

	raw, ok, err := f.cache.Get(f.ctx, SummaryKey(f.org, 30))
	is.NoErr(err)
	is.True(ok)

	second, err := f.analytics.DealSummary(f.ctx, f.org, 30)
	is.NoErr(err)
	is.Equal(f.stats.summaryCalls.Load(), int64(1)) // 命中缓存

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	is.Equal(string(a), string(b))
	is.Equal(string(b), raw)

	// 其他 days 使用独立的键
	_, err = f.analytics.DealSummary(f.ctx, f.org, 7)
	is.NoErr(err)
	is.Equal(f.stats.summaryCalls.Load(), int64(2))

	// 金额变化使全部汇总缓存失效
	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Amount: money("250")})
	is.NoErr(err)
	_, ok, _ = f.cache.Get(f.ctx, SummaryKey(f.org, 30))
	is.True(!ok)
	_, ok, _ = f.cache.Get(f.ctx, SummaryKey(f.org, 7))
	is.True(!ok)

	third, err := f.analytics.DealSummary(f.ctx, f.org, 30)
	is.NoErr(err)
	is.Equal(f.stats.summaryCalls.Load(), int64(3))
	is.Equal(third.AmountByStatus[models.DealStatusNew].String(), "250.00")
}

func TestInvalidationOnlyOnRelevantChanges(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	d := f.deal(f.owner, models.DealInput{Title: "a"})

	_, err := f.analytics.DealFunnel(f.ctx, f.org)
	is.NoErr(err)

	// 仅修改标题不影响分析结果
	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Title: str("b")})
	is.NoErr(err)
	_, ok, _ := f.cache.Get(f.ctx, FunnelKey(f.org))
	is.True(ok)

	_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Stage: stage(models.DealStageProposal)})
	is.NoErr(err)
	_, ok, _ = f.cache.Get(f.ctx, FunnelKey(f.org))
	is.True(!ok)

	_, err = f.analytics.DealFunnel(f.ctx, f.org)
	is.NoErr(err)
	is.NoErr(f.deals.Delete(f.ctx, f.owner, d.ID))
	_, ok, _ = f.cache.Get(f.ctx, FunnelKey(f.org))
	is.True(!ok)
}

func TestInvalidationIsTenantScoped(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	otherOrg := f.newOrg("Other")
	outsider := f.join(otherOrg, "Olga", models.RoleOwner)

	_, err := f.analytics.DealSummary(f.ctx, otherOrg, 30)
	is.NoErr(err)
	f.deal(f.owner, models.DealInput{Title: "a"})

	_, ok, _ := f.cache.Get(f.ctx, SummaryKey(outsider.OrganizationID, 30))
	is.True(ok)
}

func TestBuildFunnel(t *testing.T) {
	t.Run("rates", func(t *testing.T) {
		is := is.New(t)
		fn := BuildFunnel([]models.StageStatusCount{
			{Stage: models.DealStageQualification, Status: models.DealStatusNew, Count: 3},
			{Stage: models.DealStageProposal, Status: models.DealStatusInProgress, Count: 1},
			{Stage: models.DealStageNegotiation, Status: models.DealStatusInProgress, Count: 1},
			{Stage: models.DealStageClosed, Status: models.DealStatusWon, Count: 1},
			{Stage: models.DealStageClosed, Status: models.DealStatusLost, Count: 1},
		})
		is.Equal(len(fn.Stages), 4)
		is.Equal(fn.Stages[0].ConversionRate, 100.0)
		is.Equal(fn.Stages[1].ConversionRate, 33.33)
		is.Equal(fn.Stages[2].ConversionRate, 100.0)
		is.Equal(fn.Stages[3].ConversionRate, 200.0)
		is.Equal(fn.Stages[3].TotalCount, int64(2))
		is.Equal(fn.Stages[3].StatusCounts[models.DealStatusWon], int64(1))
		is.Equal(fn.TotalConversion, 66.67)
	})
	t.Run("zero predecessor", func(t *testing.T) {
		is := is.New(t)
		fn := BuildFunnel([]models.StageStatusCount{
			{Stage: models.DealStageNegotiation, Status: models.DealStatusNew, Count: 2},
		})
		is.Equal(fn.Stages[0].ConversionRate, 100.0)
		is.Equal(fn.Stages[1].ConversionRate, 0.0)
		is.Equal(fn.Stages[2].ConversionRate, 0.0)
		is.Equal(fn.Stages[3].ConversionRate, 0.0)
		is.Equal(fn.TotalConversion, 0.0)
	})
	t.Run("empty", func(t *testing.T) {
		is := is.New(t)
		fn := BuildFunnel(nil)
		is.Equal(fn.Stages[0].ConversionRate, 100.0)
		is.Equal(fn.Stages[0].TotalCount, int64(0))
		is.Equal(len(fn.Stages[0].StatusCounts), 0)
	})
}

func TestDealFunnelCached(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	f.deal(f.owner, models.DealInput{Title: "a"})

	_, err := f.analytics.DealFunnel(f.ctx, f.org)
	is.NoErr(err)
	_, err = f.analytics.DealFunnel(f.ctx, f.org)
	is.NoErr(err)
	is.Equal(f.stats.funnelCalls.Load(), int64(1))

	// 过期后重新计算
	f.now = f.now.Add(AnalyticsTTL)
	_, err = f.analytics.DealFunnel(f.ctx, f.org)
	is.NoErr(err)
	is.Equal(f.stats.funnelCalls.Load(), int64(2))
}

type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) (string, bool, error)        { return "", false, errCacheDown }
func (brokenCache) Set(context.Context, string, string, time.Duration) error { return errCacheDown }
func (brokenCache) Delete(context.Context, ...string) error                  { return errCacheDown }
func (brokenCache) Keys(context.Context, string) ([]string, error)           { return nil, errCacheDown }
func (brokenCache) Close() error                                             { return nil }

func TestAnalyticsSurvivesCacheFailure(t *testing.T) {
	f := newFixture(t)

	t.Run("cache errors", func(t *testing.T) {
		is := is.New(t)
		f.analytics.caches = cache.Static(brokenCache{})
		d := f.deal(f.owner, models.DealInput{Title: "a", Amount: money("10")})
		_, err := f.analytics.DealSummary(f.ctx, f.org, 30)
		is.NoErr(err)
		_, err = f.deals.Update(f.ctx, f.owner, d.ID, models.DealChanges{Amount: money("20")})
		is.NoErr(err) // 失效失败不影响写入
	})
	t.Run("cache unreachable", func(t *testing.T) {
		is := is.New(t)
		f.analytics.caches = cache.NewManager(func(context.Context) (cache.Cache, error) {
			return nil, errCacheDown
		})
		fn, err := f.analytics.DealFunnel(f.ctx, f.org)
		is.NoErr(err)
		is.Equal(fn.Stages[0].TotalCount, int64(1))
	})
}
