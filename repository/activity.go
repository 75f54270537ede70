package repository

import (
	"context"

	"github.com/BerniceZTT/crm_pipeline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository 活动记录仓储，只追加
type ActivityRepository struct {
	c *mongo.Collection
}

// NewActivityRepository 创建活动仓储
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{c: db.Collection(ActivitiesCollection)}
}

// EnsureIndexes 按商机时间倒序查询
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "deal_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_activity_deal_created"),
	})
	return err
}

// Create 追加活动
func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, a)
	return mapError(err)
}

// ListByDeal 最新的在前
func (r *ActivityRepository) ListByDeal(ctx context.Context, dealID primitive.ObjectID, skip, limit int64) ([]models.Activity, int64, error) {
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return findPage[models.Activity](ctx, r.c, bson.M{"deal_id": dealID}, sort, skip, limit)
}
