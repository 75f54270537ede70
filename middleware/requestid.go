package middleware

import (
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-Id"

// RequestID 沿用客户端传入的请求ID，没有则生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(utils.ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
