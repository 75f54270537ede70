package repository

import (
	"context"
	"regexp"

	"github.com/BerniceZTT/crm_pipeline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContactRepository 联系人仓储
type ContactRepository struct {
	c *mongo.Collection
}

// NewContactRepository 创建联系人仓储
func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{c: db.Collection(ContactsCollection)}
}

// EnsureIndexes 创建索引
func (r *ContactRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_contact_org_created"),
	})
	return err
}

// Create 创建联系人
func (r *ContactRepository) Create(ctx context.Context, ct *models.Contact) error {
	if ct.ID.IsZero() {
		ct.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, ct)
	return mapError(err)
}

// FindInOrganization 按ID查找且必须属于该组织
func (r *ContactRepository) FindInOrganization(ctx context.Context, id, orgID primitive.ObjectID) (*models.Contact, error) {
	var ct models.Contact
	err := r.c.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&ct)
	if err != nil {
		return nil, mapError(err)
	}
	return &ct, nil
}

// FindByIDs 批量查找
func (r *ContactRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Contact, error) {
	return findByIDs[models.Contact](ctx, r.c, ids)
}

// List 分页查询，search 对姓名和邮箱做不区分大小写的子串匹配
func (r *ContactRepository) List(ctx context.Context, f models.ContactFilter) ([]models.Contact, int64, error) {
	filter := bson.M{"organization_id": f.OrganizationID}
	if f.OwnerID != nil {
		filter["owner_id"] = *f.OwnerID
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return findPage[models.Contact](ctx, r.c, filter, sort, f.Skip, f.Limit)
}

// Update 整体替换联系人
func (r *ContactRepository) Update(ctx context.Context, ct *models.Contact) error {
	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": ct.ID, "organization_id": ct.OrganizationID}, ct)
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除联系人
func (r *ContactRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
