package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/repository"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MembershipResolver 确认用户属于组织并给出角色
type MembershipResolver struct {
	memberships MembershipRepository
}

// NewMembershipResolver 创建 MembershipResolver
func NewMembershipResolver(memberships MembershipRepository) *MembershipResolver {
	return &MembershipResolver{memberships: memberships}
}

// Resolve 没有成员关系时返回 AccessDenied，而不是 NotFound
func (r *MembershipResolver) Resolve(ctx context.Context, userID, orgID primitive.ObjectID) (models.Role, error) {
	m, err := r.memberships.Find(ctx, userID, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", utils.NewAccessDeniedError("User is not a member of this organization")
	}
	if err != nil {
		return "", fmt.Errorf("resolve membership: %w", err)
	}
	if !m.Role.Valid() {
		return "", fmt.Errorf("membership %s has unknown role %q", m.ID.Hex(), m.Role)
	}
	return m.Role, nil
}
