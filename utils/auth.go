package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken 令牌无效或类型不匹配
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims 令牌中携带的用户信息
type TokenClaims struct {
	UserID string
	Email  string
	Type   string
}

// TokenManager 负责签发与校验JWT
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager 创建TokenManager
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateToken 生成指定类型的JWT令牌
func (m *TokenManager) GenerateToken(userID, email, tokenType string) (string, error) {
	ttl := m.accessTTL
	if tokenType == TokenTypeRefresh {
		ttl = m.refreshTTL
	}

	now := m.now()
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"type":  tokenType,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		Logger.Error().Err(err).Msg("生成token失败")
		return "", err
	}
	return tokenString, nil
}

// ParseToken 解析和验证JWT令牌，并校验令牌类型
func (m *TokenManager) ParseToken(tokenString, wantType string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	typ, _ := claims["type"].(string)
	if id == "" || typ != wantType {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{UserID: id, Email: email, Type: typ}, nil
}

// HashPassword 使用bcrypt哈希密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 校验密码
func VerifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
