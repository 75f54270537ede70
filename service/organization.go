package service

import (
	"context"
	"fmt"

	"github.com/BerniceZTT/crm_pipeline/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationService 组织目录
type OrganizationService struct {
	organizations OrganizationRepository
	memberships   MembershipRepository
}

// NewOrganizationService 创建 OrganizationService
func NewOrganizationService(organizations OrganizationRepository, memberships MembershipRepository) *OrganizationService {
	return &OrganizationService{organizations: organizations, memberships: memberships}
}

// ListForUser 用户所属的全部组织及角色，按加入时间排序
func (s *OrganizationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrganizationWithRole, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.OrganizationID)
	}
	orgs, err := s.organizations.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Organization, len(orgs))
	for _, o := range orgs {
		byID[o.ID] = o
	}

	out := make([]models.OrganizationWithRole, 0, len(memberships))
	for _, m := range memberships {
		org, ok := byID[m.OrganizationID]
		if !ok {
			continue
		}
		out = append(out, models.OrganizationWithRole{Organization: org, Role: m.Role})
	}
	return out, nil
}
