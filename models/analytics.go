package models

// DealSummary 商机汇总
type DealSummary struct {
	StatusCounts      map[DealStatus]int64 `json:"status_counts"`
	AmountByStatus    map[DealStatus]Money `json:"amount_by_status"`
	AverageWonAmount  float64              `json:"average_won_amount"`
	NewDealsLastNDays int64                `json:"new_deals_last_n_days"`
	DaysPeriod        int                  `json:"days_period"`
}

// FunnelStage 漏斗中的一个阶段
type FunnelStage struct {
	Stage          DealStage            `json:"stage"`
	TotalCount     int64                `json:"total_count"`
	StatusCounts   map[DealStatus]int64 `json:"status_counts"`
	ConversionRate float64              `json:"conversion_rate"`
}

// DealFunnel 阶段转化漏斗
type DealFunnel struct {
	Stages          []FunnelStage `json:"stages"`
	TotalConversion float64       `json:"total_conversion"`
}

// StatusTotal 按状态分组的数量与金额
type StatusTotal struct {
	Status DealStatus `bson:"_id"`
	Count  int64      `bson:"count"`
	Amount Money      `bson:"amount"`
}

// StageStatusCount 按(阶段, 状态)分组的数量
type StageStatusCount struct {
	Stage  DealStage  `bson:"stage"`
	Status DealStatus `bson:"status"`
	Count  int64      `bson:"count"`
}
