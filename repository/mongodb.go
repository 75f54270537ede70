package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// 集合名
	UsersCollection            = "users"
	OrganizationsCollection    = "organizations"
	MembershipsCollection      = "memberships"
	ContactsCollection         = "contacts"
	DealsCollection            = "deals"
	TasksCollection            = "tasks"
	ActivitiesCollection       = "activities"
	ApiOperationLogsCollection = "apiOperationLogs"
)

var allCollections = []string{
	UsersCollection,
	OrganizationsCollection,
	MembershipsCollection,
	ContactsCollection,
	DealsCollection,
	TasksCollection,
	ActivitiesCollection,
	ApiOperationLogsCollection,
}

// InitMongoDB 初始化MongoDB连接
func InitMongoDB(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	db := client.Database(dbName)
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	return client, db, nil
}

// CloseMongoDB 关闭MongoDB连接
func CloseMongoDB(ctx context.Context, client *mongo.Client) {
	if client == nil {
		return
	}
	if err := client.Disconnect(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
		return
	}
	utils.Logger.Info().Msg("已断开MongoDB连接")
}

// Mongo 汇总所有基于MongoDB的仓储
type Mongo struct {
	db *mongo.Database

	Users         *UserRepository
	Organizations *OrganizationRepository
	Memberships   *MembershipRepository
	Contacts      *ContactRepository
	Deals         *DealRepository
	Tasks         *TaskRepository
	Activities    *ActivityRepository
	OperationLogs *OperationLogRepository
	Transactor    *MongoTransactor
}

// NewMongo 基于数据库创建全部仓储
func NewMongo(client *mongo.Client, db *mongo.Database) *Mongo {
	return &Mongo{
		db:            db,
		Users:         NewUserRepository(db),
		Organizations: NewOrganizationRepository(db),
		Memberships:   NewMembershipRepository(db),
		Contacts:      NewContactRepository(db),
		Deals:         NewDealRepository(db),
		Tasks:         NewTaskRepository(db),
		Activities:    NewActivityRepository(db),
		OperationLogs: NewOperationLogRepository(db),
		Transactor:    NewMongoTransactor(client),
	}
}

// EnsureIndexes 创建全部索引
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	indexers := []interface {
		EnsureIndexes(ctx context.Context) error
	}{
		m.Users,
		m.Memberships,
		m.Contacts,
		m.Deals,
		m.Tasks,
		m.Activities,
	}
	for _, ix := range indexers {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("创建索引失败: %w", err)
		}
	}
	utils.Logger.Info().Msg("数据库索引已就绪")
	return nil
}

// GetDatabaseStatus 获取数据库状态
func (m *Mongo) GetDatabaseStatus(ctx context.Context) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	for _, collName := range allCollections {
		count, err := m.db.Collection(collName).EstimatedDocumentCount(ctx)
		if err != nil {
			utils.Logger.Error().Err(err).Str("collection", collName).Msg("获取集合计数失败")
			result[collName] = map[string]interface{}{
				"count": 0,
				"error": "unavailable",
			}
			continue
		}
		result[collName] = map[string]interface{}{"count": count}
	}

	return result, nil
}

// findPage 统计总数并按条件分页查询
func findPage[T any](ctx context.Context, c *mongo.Collection, filter bson.M, sort bson.D, skip, limit int64) ([]T, int64, error) {
	utils.LogDbOperation("find", c.Name(), filter)

	total, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(sort).SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
