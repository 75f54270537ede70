package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityType 活动类型
type ActivityType string

const (
	ActivityComment       ActivityType = "comment"
	ActivityStatusChanged ActivityType = "status_changed"
	ActivityStageChanged  ActivityType = "stage_changed"
	ActivityTaskCreated   ActivityType = "task_created"
	ActivitySystem        ActivityType = "system"
)

// Activity 商机活动记录，只追加不修改
type Activity struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	DealID    primitive.ObjectID     `bson:"deal_id" json:"deal_id"`
	AuthorID  *primitive.ObjectID    `bson:"author_id,omitempty" json:"author_id"`
	Type      ActivityType           `bson:"type" json:"type"`
	Payload   map[string]interface{} `bson:"payload" json:"payload"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

// ActivityView 带作者名称的活动
type ActivityView struct {
	Activity
	AuthorName string `json:"author_name"`
}

// ActivityInput 创建活动请求，仅支持评论
type ActivityInput struct {
	Type    ActivityType           `json:"type" binding:"required"`
	Payload map[string]interface{} `json:"payload"`
}
