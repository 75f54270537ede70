package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger 全局日志对象，InitLogger之前不输出
var Logger = zerolog.Nop()

// InitLogger 初始化日志系统
func InitLogger(debug bool) {
	InitLoggerWithWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, debug)
	Logger.Info().Msg("日志系统初始化完成")
}

// InitLoggerWithWriter 使用指定输出初始化日志
func InitLoggerWithWriter(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	Logger = zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)
}

// LogApiRequest 记录API请求
func LogApiRequest(requestID, method, url string, params, body interface{}, headers map[string]string) {
	// 过滤敏感信息
	if auth := headers["Authorization"]; len(auth) > 15 {
		headers["Authorization"] = auth[:15] + "..."
	}

	Logger.Info().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Interface("params", params).
		Interface("body", body).
		Interface("headers", headers).
		Msg("API请求")
}

// LogApiResponse 记录API响应
func LogApiResponse(requestID, method, url string, statusCode int, responseTime time.Duration, responseBody interface{}) {
	event := Logger.Info()
	if statusCode >= 400 {
		event = Logger.Error()
	}
	event.
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Int("statusCode", statusCode).
		Dur("responseTime", responseTime).
		Interface("body", responseBody).
		Msg("API响应")
}

// LogDbOperation 记录数据库操作
func LogDbOperation(operation string, collection string, query interface{}) {
	Logger.Debug().
		Str("operation", operation).
		Str("collection", collection).
		Interface("query", query).
		Msg("数据库操作")
}
