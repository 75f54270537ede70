package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task 商机下的任务
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DealID      primitive.ObjectID `bson:"deal_id" json:"deal_id"`
	Title       string             `bson:"title" json:"title"`
	Description *string            `bson:"description,omitempty" json:"description"`
	DueDate     *time.Time         `bson:"due_date,omitempty" json:"due_date"`
	IsDone      bool               `bson:"is_done" json:"is_done"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// TaskView 带商机标题的任务
type TaskView struct {
	Task
	DealTitle string `json:"deal_title"`
}

// TaskInput 创建任务请求
type TaskInput struct {
	DealID      primitive.ObjectID `json:"deal_id" binding:"required"`
	Title       string             `json:"title" binding:"required"`
	Description *string            `json:"description"`
	DueDate     *time.Time         `json:"due_date"`
}

// TaskChanges 任务部分更新
type TaskChanges struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	IsDone      *bool      `json:"is_done"`
}

// TaskFilter 任务查询条件，按商机所属组织关联
type TaskFilter struct {
	OrganizationID primitive.ObjectID
	DealID         *primitive.ObjectID
	OnlyOpen       bool
	DueBefore      *time.Time
	DueAfter       *time.Time
	Skip           int64
	Limit          int64
}
