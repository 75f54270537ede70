package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/BerniceZTT/crm_pipeline/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTransactor 在会话事务中执行函数；单机部署不支持事务时直接执行
type MongoTransactor struct {
	client *mongo.Client
}

// NewMongoTransactor 创建事务执行器
func NewMongoTransactor(client *mongo.Client) *MongoTransactor {
	return &MongoTransactor{client: client}
}

// WithinTransaction 在事务中执行fn
func (t *MongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.client == nil {
		return fn(ctx)
	}

	sess, err := t.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	attempted := false
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		attempted = true
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		// 事务不可用，退化为逐条提交
		utils.Logger.Warn().Err(err).Bool("attempted", attempted).Msg("MongoDB不支持事务，改为非事务执行")
		return fn(ctx)
	}
	return err
}

var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation
	51:  true,
	263: true, // OperationNotSupportedInTransaction
}

var notSupportedKeywords = []string{
	"transaction",
	"replica set",
	"session",
	"not supported",
	"illegal operation",
}

// IsNotSupported 判断错误是否表示服务器不支持事务
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if notSupportedCodes[cmdErr.Code] {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range notSupportedKeywords {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
