package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role 组织内角色
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// Organization 组织（租户）
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Membership 用户与组织的绑定关系，(organization_id, user_id) 唯一
type Membership struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role           Role               `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// OrganizationWithRole 当前用户所属组织及角色
type OrganizationWithRole struct {
	Organization
	Role Role `json:"role"`
}
