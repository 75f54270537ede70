package repository

import (
	"context"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository 用户仓储
type UserRepository struct {
	c *mongo.Collection
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{c: db.Collection(UsersCollection)}
}

// EnsureIndexes 邮箱唯一
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_user_email").SetUnique(true),
	})
	return err
}

// Create 创建用户，邮箱重复返回 ErrDuplicate
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	_, err := r.c.InsertOne(ctx, u)
	return mapError(err)
}

// FindByEmail 按邮箱查找
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.c.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// FindByID 按ID查找
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// FindByIDs 批量查找，不存在的ID被忽略
func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return findByIDs[models.User](ctx, r.c, ids)
}

func findByIDs[T any](ctx context.Context, c *mongo.Collection, ids []primitive.ObjectID) ([]T, error) {
	items := []T{}
	if len(ids) == 0 {
		return items, nil
	}
	cur, err := c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
