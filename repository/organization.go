package repository

import (
	"context"

	"github.com/BerniceZTT/crm_pipeline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrganizationRepository 组织仓储
type OrganizationRepository struct {
	c *mongo.Collection
}

// NewOrganizationRepository 创建组织仓储
func NewOrganizationRepository(db *mongo.Database) *OrganizationRepository {
	return &OrganizationRepository{c: db.Collection(OrganizationsCollection)}
}

// Create 创建组织
func (r *OrganizationRepository) Create(ctx context.Context, o *models.Organization) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, o)
	return mapError(err)
}

// FindByIDs 批量查找组织
func (r *OrganizationRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Organization, error) {
	return findByIDs[models.Organization](ctx, r.c, ids)
}

// MembershipRepository 成员关系仓储
type MembershipRepository struct {
	c *mongo.Collection
}

// NewMembershipRepository 创建成员关系仓储
func NewMembershipRepository(db *mongo.Database) *MembershipRepository {
	return &MembershipRepository{c: db.Collection(MembershipsCollection)}
}

// EnsureIndexes (organization_id, user_id) 唯一
func (r *MembershipRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_membership_org_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_membership_user"),
		},
	})
	return err
}

// Create 创建成员关系，重复返回 ErrDuplicate
func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, m)
	return mapError(err)
}

// Find 查找用户在组织中的成员关系
func (r *MembershipRepository) Find(ctx context.Context, userID, orgID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	err := r.c.FindOne(ctx, bson.M{"user_id": userID, "organization_id": orgID}).Decode(&m)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

// ListByUser 用户的全部成员关系
func (r *MembershipRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := r.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.Membership{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
