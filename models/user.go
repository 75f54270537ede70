package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 用户
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"password_hash" json:"-"` // 不返回密码
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// RegisterInput 注册请求
type RegisterInput struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	Name             string `json:"name" binding:"required"`
	OrganizationName string `json:"organization_name" binding:"required"`
}

// LoginInput 登录请求
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput 刷新令牌请求
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenPair 令牌响应
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
