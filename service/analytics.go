package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/BerniceZTT/crm_pipeline/cache"
	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// AnalyticsTTL 分析结果缓存时间
	AnalyticsTTL = 300 * time.Second

	DefaultSummaryDays = 30
	MaxSummaryDays     = 365
)

// SummaryKeyPrefix 某组织全部汇总缓存键的公共前缀
func SummaryKeyPrefix(orgID primitive.ObjectID) string {
	return "deal_summary:" + orgID.Hex() + ":"
}

// SummaryKey 汇总缓存键 deal_summary:{org}:{days}
func SummaryKey(orgID primitive.ObjectID, days int) string {
	return fmt.Sprintf("%s%d", SummaryKeyPrefix(orgID), days)
}

// FunnelKey 漏斗缓存键 deal_funnel:{org}
func FunnelKey(orgID primitive.ObjectID) string {
	return "deal_funnel:" + orgID.Hex()
}

// AnalyticsService 商机汇总与漏斗，带读穿缓存
type AnalyticsService struct {
	stats  DealStatsRepository
	caches *cache.Manager
	now    Clock
}

// NewAnalyticsService 创建 AnalyticsService
func NewAnalyticsService(stats DealStatsRepository, caches *cache.Manager) *AnalyticsService {
	return &AnalyticsService{stats: stats, caches: caches, now: systemClock}
}

// SetClock 替换时钟
func (s *AnalyticsService) SetClock(now Clock) {
	s.now = now
}

// DealSummary 按状态统计数量和金额，days 取值 1..365
func (s *AnalyticsService) DealSummary(ctx context.Context, orgID primitive.ObjectID, days int) (*models.DealSummary, error) {
	if days < 1 || days > MaxSummaryDays {
		return nil, utils.NewValidationError(fmt.Sprintf("days must be between 1 and %d", MaxSummaryDays))
	}
	return readThrough(ctx, s, SummaryKey(orgID, days), func() (*models.DealSummary, error) {
		return s.computeSummary(ctx, orgID, days)
	})
}

func (s *AnalyticsService) computeSummary(ctx context.Context, orgID primitive.ObjectID, days int) (*models.DealSummary, error) {
	totals, err := s.stats.StatusTotals(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("status totals: %w", err)
	}
	avg, err := s.stats.AverageWonAmount(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("average won amount: %w", err)
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	newDeals, err := s.stats.CountNewSince(ctx, orgID, since)
	if err != nil {
		return nil, fmt.Errorf("count new deals: %w", err)
	}

	summary := &models.DealSummary{
		StatusCounts:      map[models.DealStatus]int64{},
		AmountByStatus:    map[models.DealStatus]models.Money{},
		NewDealsLastNDays: newDeals,
		DaysPeriod:        days,
	}
	for _, t := range totals {
		summary.StatusCounts[t.Status] = t.Count
		summary.AmountByStatus[t.Status] = models.NewMoney(t.Amount.Decimal)
	}
	summary.AverageWonAmount, _ = avg.Float64()
	return summary, nil
}

// DealFunnel 按固定阶段顺序计算转化率
func (s *AnalyticsService) DealFunnel(ctx context.Context, orgID primitive.ObjectID) (*models.DealFunnel, error) {
	return readThrough(ctx, s, FunnelKey(orgID), func() (*models.DealFunnel, error) {
		rows, err := s.stats.StageStatusCounts(ctx, orgID)
		if err != nil {
			return nil, fmt.Errorf("stage status counts: %w", err)
		}
		return BuildFunnel(rows), nil
	})
}

// BuildFunnel 将(阶段, 状态)计数折叠到四个固定阶段
func BuildFunnel(rows []models.StageStatusCount) *models.DealFunnel {
	stages := make([]models.FunnelStage, len(models.DealStages))
	for i, st := range models.DealStages {
		stages[i] = models.FunnelStage{Stage: st, StatusCounts: map[models.DealStatus]int64{}}
	}
	for _, r := range rows {
		i := r.Stage.Index()
		if i < 0 {
			continue
		}
		stages[i].TotalCount += r.Count
		stages[i].StatusCounts[r.Status] += r.Count
	}

	for i := range stages {
		if i == 0 {
			stages[i].ConversionRate = 100
			continue
		}
		stages[i].ConversionRate = percent(stages[i].TotalCount, stages[i-1].TotalCount)
	}

	return &models.DealFunnel{
		Stages:          stages,
		TotalConversion: percent(stages[len(stages)-1].TotalCount, stages[0].TotalCount),
	}
}

// percent 100*n/d 保留两位小数，分母为0时返回0
func percent(n, d int64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*100*100) / 100
}

// InvalidateOrganization 删除组织的全部汇总缓存和漏斗缓存
func (s *AnalyticsService) InvalidateOrganization(ctx context.Context, orgID primitive.ObjectID) error {
	c, err := s.caches.Get(ctx)
	if err != nil {
		return fmt.Errorf("cache unavailable: %w", err)
	}
	keys, err := c.Keys(ctx, SummaryKeyPrefix(orgID))
	if err != nil {
		return fmt.Errorf("list summary keys: %w", err)
	}
	keys = append(keys, FunnelKey(orgID))
	if err := c.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete analytics keys: %w", err)
	}
	return nil
}

// readThrough 命中缓存直接返回；缓存故障只记录日志，回退到实时计算
func readThrough[T any](ctx context.Context, s *AnalyticsService, key string, compute func() (*T, error)) (*T, error) {
	c, err := s.caches.Get(ctx)
	if err != nil {
		utils.Logger.Warn().Err(err).Str("key", key).Msg("缓存不可用，直接计算")
		c = nil
	}

	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		switch {
		case err != nil:
			utils.Logger.Warn().Err(err).Str("key", key).Msg("读取缓存失败")
		case ok:
			var v T
			if err := json.Unmarshal([]byte(raw), &v); err == nil {
				return &v, nil
			}
			utils.Logger.Warn().Str("key", key).Msg("缓存内容无法解析，重新计算")
		}
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}

	if c != nil {
		b, err := json.Marshal(v)
		if err == nil {
			err = c.Set(ctx, key, string(b), AnalyticsTTL)
		}
		if err != nil {
			utils.Logger.Warn().Err(err).Str("key", key).Msg("写入缓存失败")
		}
	}
	return v, nil
}
