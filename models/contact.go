package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact 联系人
type Contact struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	OwnerID        primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Name           string             `bson:"name" json:"name"`
	Email          *string            `bson:"email,omitempty" json:"email"`
	Phone          *string            `bson:"phone,omitempty" json:"phone"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// ContactView 带负责人名称的联系人
type ContactView struct {
	Contact
	OwnerName string `json:"owner_name"`
}

// ContactInput 创建/更新联系人请求
type ContactInput struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
}

// ContactFilter 联系人查询条件
type ContactFilter struct {
	OrganizationID primitive.ObjectID
	OwnerID        *primitive.ObjectID
	Search         string
	Skip           int64
	Limit          int64
}
