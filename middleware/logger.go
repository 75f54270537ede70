package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

// 请求/响应体超过该长度时不写入日志
const maxLoggedBody = 4096

// bodyLogWriter 用于记录响应内容
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现 ResponseWriter 接口
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// captureBody 替换响应写入器，已替换过则复用
func captureBody(c *gin.Context) *bytes.Buffer {
	if blw, ok := c.Writer.(*bodyLogWriter); ok {
		return blw.body
	}
	blw := &bodyLogWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
	c.Writer = blw
	return blw.body
}

// readBody 读取并恢复请求体
func readBody(c *gin.Context) []byte {
	if c.Request.Body == nil {
		return nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("读取请求体失败")
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	return body
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}

// Logger 日志中间件
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		requestID := c.GetString(utils.ContextRequestIDKey)

		// 记录请求头
		headers := make(map[string]string)
		for k, v := range c.Request.Header {
			if len(v) > 0 {
				headers[k] = v[0]
			}
		}

		requestBody := readBody(c)
		var logged interface{} = truncate(requestBody)
		if len(requestBody) > 0 {
			logged = sanitizeData(parseBody(c.Request.Header.Get("Content-Type"), requestBody))
		}
		responseBody := captureBody(c)

		utils.LogApiRequest(requestID, method, path, c.Request.URL.Query(), logged, headers)

		c.Next()

		utils.LogApiResponse(requestID, method, path, c.Writer.Status(), time.Since(start), truncate(responseBody.Bytes()))
	}
}

// Recovery 恢复中间件
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// 记录崩溃信息
		utils.Logger.Error().
			Interface("panic", recovered).
			Str("request_id", c.GetString(utils.ContextRequestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("服务崩溃")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
			"code":    "INTERNAL_ERROR",
		})
	})
}
