package repository

import (
	"context"

	"github.com/BerniceZTT/crm_pipeline/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// OperationLogRepository 操作日志仓储
type OperationLogRepository struct {
	c *mongo.Collection
}

// NewOperationLogRepository 创建操作日志仓储
func NewOperationLogRepository(db *mongo.Database) *OperationLogRepository {
	return &OperationLogRepository{c: db.Collection(ApiOperationLogsCollection)}
}

// Create 保存操作日志
func (r *OperationLogRepository) Create(ctx context.Context, l *models.OperationLog) error {
	_, err := r.c.InsertOne(ctx, l)
	return err
}
