package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DealStatus 商机状态
type DealStatus string

const (
	DealStatusNew        DealStatus = "new"
	DealStatusInProgress DealStatus = "in_progress"
	DealStatusWon        DealStatus = "won"
	DealStatusLost       DealStatus = "lost"
)

// DealStatuses 全部状态，按展示顺序
var DealStatuses = []DealStatus{DealStatusNew, DealStatusInProgress, DealStatusWon, DealStatusLost}

// Valid 是否为已知状态
func (s DealStatus) Valid() bool {
	for _, v := range DealStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// DealStage 销售阶段，顺序有意义
type DealStage string

const (
	DealStageQualification DealStage = "qualification"
	DealStageProposal      DealStage = "proposal"
	DealStageNegotiation   DealStage = "negotiation"
	DealStageClosed        DealStage = "closed"
)

// DealStages 固定的阶段顺序
var DealStages = []DealStage{DealStageQualification, DealStageProposal, DealStageNegotiation, DealStageClosed}

// Index 阶段在固定顺序中的位置，未知阶段返回 -1
func (s DealStage) Index() int {
	for i, v := range DealStages {
		if v == s {
			return i
		}
	}
	return -1
}

// Valid 是否为已知阶段
func (s DealStage) Valid() bool {
	return s.Index() >= 0
}

const DefaultCurrency = "USD"

// Deal 商机
type Deal struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	ContactID      primitive.ObjectID `bson:"contact_id" json:"contact_id"`
	OwnerID        primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Title          string             `bson:"title" json:"title"`
	Amount         *Money             `bson:"amount" json:"amount"`
	Currency       string             `bson:"currency" json:"currency"`
	Status         DealStatus         `bson:"status" json:"status"`
	Stage          DealStage          `bson:"stage" json:"stage"`
	Description    *string            `bson:"description,omitempty" json:"description"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// DealView 带联系人、负责人名称的商机
type DealView struct {
	Deal
	ContactName string `json:"contact_name"`
	OwnerName   string `json:"owner_name"`
}

// DealInput 创建商机请求
type DealInput struct {
	Title       string             `json:"title" binding:"required"`
	ContactID   primitive.ObjectID `json:"contact_id" binding:"required"`
	Amount      *Money             `json:"amount"`
	Currency    string             `json:"currency" binding:"omitempty,len=3"`
	Status      DealStatus         `json:"status"`
	Stage       DealStage          `json:"stage"`
	Description *string            `json:"description"`
}

// DealChanges 商机部分更新，nil表示未提供
type DealChanges struct {
	Title       *string     `json:"title"`
	Amount      *Money      `json:"amount"`
	Currency    *string     `json:"currency" binding:"omitempty,len=3"`
	Status      *DealStatus `json:"status"`
	Stage       *DealStage  `json:"stage"`
	Description *string     `json:"description"`
	UpdatedAt   time.Time   `json:"-"`
}

// DealFilter 商机查询条件
type DealFilter struct {
	OrganizationID primitive.ObjectID
	Statuses       []DealStatus
	Stage          *DealStage
	MinAmount      *Money
	MaxAmount      *Money
	OwnerID        *primitive.ObjectID
	OrderBy        string
	Ascending      bool
	Skip           int64
	Limit          int64
}

const (
	DealOrderCreatedAt = "created_at"
	DealOrderAmount    = "amount"
)
