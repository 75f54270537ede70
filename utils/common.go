package utils

import (
	"errors"

	"github.com/BerniceZTT/crm_pipeline/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// gin上下文中的键
const (
	ContextUserKey      = "user"
	ContextTenantKey    = "tenant"
	ContextRequestIDKey = "request_id"
)

// LoginUser 已认证的用户
type LoginUser struct {
	ID    primitive.ObjectID
	Email string
}

// Tenant 当前请求的组织上下文
type Tenant struct {
	OrganizationID primitive.ObjectID
	UserID         primitive.ObjectID
	Role           models.Role
}

// GetUser 获取当前用户
func GetUser(c *gin.Context) (*LoginUser, error) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, CreateUnauthorizedError("Not authenticated")
	}
	user, ok := v.(*LoginUser)
	if !ok {
		return nil, errors.New("unexpected user type in context")
	}
	return user, nil
}

// GetTenant 获取当前组织上下文
func GetTenant(c *gin.Context) (*Tenant, error) {
	v, ok := c.Get(ContextTenantKey)
	if !ok {
		return nil, NewAccessDeniedError("Organization context required")
	}
	tenant, ok := v.(*Tenant)
	if !ok {
		return nil, errors.New("unexpected tenant type in context")
	}
	return tenant, nil
}

// ParseObjectID 解析路径或查询中的ID，非法ID按不存在处理
func ParseObjectID(raw, resource string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, NewNotFoundError(resource + " not found")
	}
	return id, nil
}
