package middleware

import (
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 处理通过 c.Error 记录且尚未输出响应的错误
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 已经输出响应的不重复处理
		if c.Writer.Written() {
			return
		}
		if len(c.Errors) > 0 {
			utils.HandleError(c, c.Errors.Last().Err)
		}
	}
}
