package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/repository"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const tokenTypeBearer = "bearer"

// AuthService 注册、登录与令牌刷新
type AuthService struct {
	users         UserRepository
	organizations OrganizationRepository
	memberships   MembershipRepository
	tokens        *utils.TokenManager
	tx            Transactor
	now           Clock
}

// NewAuthService 创建 AuthService
func NewAuthService(users UserRepository, organizations OrganizationRepository, memberships MembershipRepository, tokens *utils.TokenManager, tx Transactor) *AuthService {
	return &AuthService{
		users:         users,
		organizations: organizations,
		memberships:   memberships,
		tokens:        tokens,
		tx:            tx,
		now:           systemClock,
	}
}

// SetClock 替换时钟
func (s *AuthService) SetClock(now Clock) {
	s.now = now
}

// Register 创建用户、组织，并把用户设为组织 owner
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (*models.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	orgName := strings.TrimSpace(in.OrganizationName)
	if email == "" || name == "" || orgName == "" {
		return nil, utils.NewValidationError("Email, name and organization name are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, utils.NewValidationError("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{Email: email, Name: name, PasswordHash: hash, CreatedAt: now}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return utils.NewValidationError("Email already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}
		org := &models.Organization{Name: orgName, CreatedAt: now}
		if err := s.organizations.Create(ctx, org); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		return s.memberships.Create(ctx, &models.Membership{
			OrganizationID: org.ID,
			UserID:         user.ID,
			Role:           models.RoleOwner,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Info().Str("user_id", user.ID.Hex()).Msg("用户注册成功")
	return s.issue(user.ID.Hex(), user.Email)
}

// Login 用户不存在和密码错误返回相同的 401
func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (*models.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !utils.VerifyPassword(in.Password, user.PasswordHash) {
		return nil, utils.CreateUnauthorizedError("Incorrect email or password")
	}
	return s.issue(user.ID.Hex(), user.Email)
}

// Refresh 使用 refresh 令牌换取新的令牌对
func (s *AuthService) Refresh(ctx context.Context, in models.RefreshInput) (*models.TokenPair, error) {
	claims, err := s.tokens.ParseToken(in.RefreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return nil, utils.CreateUnauthorizedError("Invalid refresh token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.CreateUnauthorizedError("Invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.CreateUnauthorizedError("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return s.issue(user.ID.Hex(), user.Email)
}

func (s *AuthService) issue(userID, email string) (*models.TokenPair, error) {
	access, err := s.tokens.GenerateToken(userID, email, utils.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateToken(userID, email, utils.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: tokenTypeBearer}, nil
}
