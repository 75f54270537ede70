package repository

import (
	"context"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DealRepository 商机仓储，同时提供分析所需的聚合查询
type DealRepository struct {
	c *mongo.Collection
}

// NewDealRepository 创建商机仓储
func NewDealRepository(db *mongo.Database) *DealRepository {
	return &DealRepository{c: db.Collection(DealsCollection)}
}

// EnsureIndexes 创建索引
func (r *DealRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_deal_org_created"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_deal_org_status"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "contact_id", Value: 1}},
			Options: options.Index().SetName("idx_deal_org_contact"),
		},
	})
	return err
}

// Create 创建商机
func (r *DealRepository) Create(ctx context.Context, d *models.Deal) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, d)
	return mapError(err)
}

// FindInOrganization 按ID查找且必须属于该组织
func (r *DealRepository) FindInOrganization(ctx context.Context, id, orgID primitive.ObjectID) (*models.Deal, error) {
	var d models.Deal
	if err := r.c.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&d); err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// FindByIDs 批量查找
func (r *DealRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Deal, error) {
	return findByIDs[models.Deal](ctx, r.c, ids)
}

// List 按条件分页查询
func (r *DealRepository) List(ctx context.Context, f models.DealFilter) ([]models.Deal, int64, error) {
	filter := bson.M{"organization_id": f.OrganizationID}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.Stage != nil {
		filter["stage"] = *f.Stage
	}
	if f.OwnerID != nil {
		filter["owner_id"] = *f.OwnerID
	}
	if f.MinAmount != nil || f.MaxAmount != nil {
		rng := bson.M{}
		if f.MinAmount != nil {
			rng["$gte"] = *f.MinAmount
		}
		if f.MaxAmount != nil {
			rng["$lte"] = *f.MaxAmount
		}
		filter["amount"] = rng
	}

	orderBy := f.OrderBy
	if orderBy != models.DealOrderAmount {
		orderBy = models.DealOrderCreatedAt
	}
	dir := -1
	if f.Ascending {
		dir = 1
	}
	sort := bson.D{{Key: orderBy, Value: dir}, {Key: "_id", Value: dir}}

	return findPage[models.Deal](ctx, r.c, filter, sort, f.Skip, f.Limit)
}

// Update 只更新提供的字段，返回更新后的商机
func (r *DealRepository) Update(ctx context.Context, id primitive.ObjectID, ch models.DealChanges) (*models.Deal, error) {
	set := bson.M{"updated_at": ch.UpdatedAt}
	if ch.Title != nil {
		set["title"] = *ch.Title
	}
	if ch.Amount != nil {
		set["amount"] = *ch.Amount
	}
	if ch.Currency != nil {
		set["currency"] = *ch.Currency
	}
	if ch.Status != nil {
		set["status"] = *ch.Status
	}
	if ch.Stage != nil {
		set["stage"] = *ch.Stage
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}

	utils.LogDbOperation("update", DealsCollection, set)

	var d models.Deal
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// Delete 删除商机
func (r *DealRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByContact 引用某联系人的商机数量
func (r *DealRepository) CountByContact(ctx context.Context, orgID, contactID primitive.ObjectID) (int64, error) {
	return r.c.CountDocuments(ctx, bson.M{"organization_id": orgID, "contact_id": contactID})
}

// StatusTotals 按状态统计数量与金额合计
func (r *DealRepository) StatusTotals(ctx context.Context, orgID primitive.ObjectID) ([]models.StatusTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"organization_id": orgID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
	}
	return aggregate[models.StatusTotal](ctx, r.c, pipeline)
}

// averageRow $avg 分组结果
type averageRow struct {
	Avg models.Money `bson:"avg"`
}

// AverageWonAmount 已赢单且金额大于0的平均金额，没有时返回0
func (r *DealRepository) AverageWonAmount(ctx context.Context, orgID primitive.ObjectID) (decimal.Decimal, error) {
	zero, _ := primitive.ParseDecimal128("0")
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"organization_id": orgID,
			"status":          models.DealStatusWon,
			"amount":          bson.M{"$gt": zero},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$amount"},
		}}},
	}
	rows, err := aggregate[averageRow](ctx, r.c, pipeline)
	if err != nil || len(rows) == 0 {
		return decimal.Zero, err
	}
	return rows[0].Avg.Decimal, nil
}

// CountNewSince since之后创建且状态为new的商机数量
func (r *DealRepository) CountNewSince(ctx context.Context, orgID primitive.ObjectID, since time.Time) (int64, error) {
	return r.c.CountDocuments(ctx, bson.M{
		"organization_id": orgID,
		"status":          models.DealStatusNew,
		"created_at":      bson.M{"$gte": since},
	})
}

// StageStatusCounts 按(阶段, 状态)统计数量
func (r *DealRepository) StageStatusCounts(ctx context.Context, orgID primitive.ObjectID) ([]models.StageStatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"organization_id": orgID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"stage": "$stage", "status": "$status"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"stage":  "$_id.stage",
			"status": "$_id.status",
			"count":  1,
		}}},
	}
	return aggregate[models.StageStatusCount](ctx, r.c, pipeline)
}

// dealIDsByOrganization 组织下全部商机ID，任务查询据此关联组织
func dealIDsByOrganization(ctx context.Context, c *mongo.Collection, orgID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := c.Distinct(ctx, "_id", bson.M{"organization_id": orgID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func aggregate[T any](ctx context.Context, c *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	utils.LogDbOperation("aggregate", c.Name(), pipeline)

	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := []T{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
