package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/BerniceZTT/crm_pipeline/models"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// 保存操作日志的超时时间
const operationLogTimeout = 3 * time.Second

// OperationLogStore 操作日志存储
type OperationLogStore interface {
	Create(ctx context.Context, l *models.OperationLog) error
}

// 需要记录的HTTP方法
var loggedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// 不需要记录的路径
var excludedPaths = map[string]bool{
	"/api/health":          true,
	"/api/db-status":       true,
	"/api/v1/auth/login":   true,
	"/api/v1/auth/refresh": true,
}

// OperationLoggerMiddleware 记录写操作，保存失败只写日志
func OperationLoggerMiddleware(store OperationLogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldLogOperation(c) {
			c.Next()
			return
		}

		startTime := time.Now()
		requestBody := sanitizeData(parseBody(c.Request.Header.Get("Content-Type"), readBody(c)))

		c.Next()

		status := c.Writer.Status()
		operationLog := models.OperationLog{
			RequestID:     c.GetString(utils.ContextRequestIDKey),
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			OperatorID:    "anonymous",
			RequestBody:   requestBody,
			StatusCode:    status,
			Success:       status < http.StatusBadRequest,
			OperationTime: startTime.UTC(),
			ResponseTime:  time.Since(startTime).Milliseconds(),
			IPAddress:     getClientIP(c),
			UserAgent:     c.Request.UserAgent(),
		}
		// 认证与组织中间件在路由组内执行，请求结束后上下文中才有这些值
		if user, err := utils.GetUser(c); err == nil {
			operationLog.OperatorID = user.ID.Hex()
		}
		if tenant, err := utils.GetTenant(c); err == nil {
			operationLog.OrganizationID = tenant.OrganizationID.Hex()
		}
		if len(c.Errors) > 0 {
			operationLog.ErrorMessage = c.Errors.String()
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationLogTimeout)
		defer cancel()
		if err := store.Create(ctx, &operationLog); err != nil {
			utils.Logger.Error().Err(err).Str("path", operationLog.Path).Msg("保存操作日志失败")
			return
		}

		utils.Logger.Debug().
			Str("method", operationLog.Method).
			Str("path", operationLog.Path).
			Int("status", status).
			Str("operator", operationLog.OperatorID).
			Int64("responseTime", operationLog.ResponseTime).
			Msg("操作日志记录完成")
	}
}

// shouldLogOperation 检查是否需要记录此操作
func shouldLogOperation(c *gin.Context) bool {
	if excludedPaths[c.Request.URL.Path] {
		return false
	}
	return loggedMethods[c.Request.Method]
}

// parseBody JSON请求体解析为对象，否则原样保存为字符串
func parseBody(contentType string, body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	if strings.Contains(contentType, "application/json") {
		var v interface{}
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
		utils.Logger.Warn().Msg("解析JSON请求体失败")
	}
	return truncate(body)
}

// sanitizeData 清理数据中的敏感信息
func sanitizeData(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		sanitized := make(map[string]interface{}, len(v))
		for k, val := range v {
			switch strings.ToLower(k) {
			case "password", "token", "access_token", "refresh_token", "authorization", "secret", "key":
				sanitized[k] = "******"
			default:
				sanitized[k] = sanitizeData(val)
			}
		}
		return sanitized
	case []interface{}:
		sanitized := make([]interface{}, len(v))
		for i, val := range v {
			sanitized[i] = sanitizeData(val)
		}
		return sanitized
	}
	return data
}

// getClientIP 获取客户端IP地址
func getClientIP(c *gin.Context) string {
	if ip := c.Request.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.Request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
