package repository

import (
	"context"

	"github.com/BerniceZTT/crm_pipeline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository 任务仓储，组织范围通过所属商机关联
type TaskRepository struct {
	c     *mongo.Collection
	deals *mongo.Collection
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		c:     db.Collection(TasksCollection),
		deals: db.Collection(DealsCollection),
	}
}

// EnsureIndexes 创建索引
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "deal_id", Value: 1}, {Key: "due_date", Value: 1}},
		Options: options.Index().SetName("idx_task_deal_due"),
	})
	return err
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, t)
	return mapError(err)
}

// FindByID 按ID查找
func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

// List 查询组织下的任务
func (r *TaskRepository) List(ctx context.Context, f models.TaskFilter) ([]models.Task, int64, error) {
	dealIDs, err := dealIDsByOrganization(ctx, r.deals, f.OrganizationID)
	if err != nil {
		return nil, 0, err
	}

	if f.DealID != nil {
		allowed := false
		for _, id := range dealIDs {
			if id == *f.DealID {
				allowed = true
				break
			}
		}
		if !allowed {
			return []models.Task{}, 0, nil
		}
		dealIDs = []primitive.ObjectID{*f.DealID}
	}

	filter := bson.M{"deal_id": bson.M{"$in": dealIDs}}
	if f.OnlyOpen {
		filter["is_done"] = false
	}
	if f.DueBefore != nil || f.DueAfter != nil {
		rng := bson.M{}
		if f.DueBefore != nil {
			rng["$lte"] = *f.DueBefore
		}
		if f.DueAfter != nil {
			rng["$gte"] = *f.DueAfter
		}
		filter["due_date"] = rng
	}

	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return findPage[models.Task](ctx, r.c, filter, sort, f.Skip, f.Limit)
}

// Update 只更新提供的字段
func (r *TaskRepository) Update(ctx context.Context, id primitive.ObjectID, ch models.TaskChanges) (*models.Task, error) {
	set := bson.M{}
	if ch.Title != nil {
		set["title"] = *ch.Title
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.DueDate != nil {
		set["due_date"] = *ch.DueDate
	}
	if ch.IsDone != nil {
		set["is_done"] = *ch.IsDone
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var t models.Task
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

// Delete 删除任务
func (r *TaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
