package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OperationLog 写操作审计日志
type OperationLog struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RequestID      string             `json:"request_id" bson:"request_id"`
	Method         string             `json:"method" bson:"method"`
	Path           string             `json:"path" bson:"path"`
	OperatorID     string             `json:"operator_id" bson:"operator_id"`
	OrganizationID string             `json:"organization_id,omitempty" bson:"organization_id,omitempty"`
	RequestBody    interface{}        `json:"request_body" bson:"request_body"`
	StatusCode     int                `json:"status_code" bson:"status_code"`
	Success        bool               `json:"success" bson:"success"`
	ErrorMessage   string             `json:"error_message,omitempty" bson:"error_message,omitempty"`
	OperationTime  time.Time          `json:"operation_time" bson:"operation_time"`
	ResponseTime   int64              `json:"response_time" bson:"response_time"` // 毫秒
	IPAddress      string             `json:"ip_address" bson:"ip_address"`
	UserAgent      string             `json:"user_agent" bson:"user_agent"`
}
