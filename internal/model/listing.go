package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

const (
	// 会话状态
	SessionStatusEditing    = "editing"
	SessionStatusSubmitting = "submitting"
	SessionStatusSucceeded  = "succeeded"
	SessionStatusFailed     = "failed"
	SessionStatusExpired    = "expired"

	// 提交结果分类
	OutcomeCreated         = "created"
	OutcomePayloadTooLarge = "payload_too_large"
	OutcomeServerError     = "server_error"
	OutcomeRejected        = "rejected"
	OutcomeNetworkError    = "network_error"
	OutcomeUnauthenticated = "unauthenticated"
)

// ==================== JSON 类型 ====================

// JSONMap JSON对象（map 存储）
type JSONMap map[string]interface{}

func (m *JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// ==================== 数据库模型 ====================

// ListingSession 一次发布会话的持久化快照
// 活动中的表单状态在内存里 (form.Controller)，这里只存可恢复的字段值与进度，
// 提交失败后用户可以回到同一会话继续编辑
type ListingSession struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time      `gorm:"index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`

	UserID int64 `gorm:"index;not null;comment:用户ID"`

	// 分类链 (解析后的规范 slug 与 id)
	CategorySlug string `gorm:"size:64;index;comment:类目slug"`
	BrandSlug    string `gorm:"size:64;comment:品牌slug"`
	ModelSlug    string `gorm:"size:64;comment:型号slug"`
	VariantSlug  string `gorm:"size:64;comment:子型号slug"`
	CategoryID   int64  `gorm:"comment:类目ID"`
	BrandID      int64  `gorm:"comment:品牌ID"`
	ModelID      int64  `gorm:"comment:型号ID"`
	VariantID    int64  `gorm:"comment:子型号ID"`

	Endpoint string `gorm:"size:128;comment:后端提交路径"`

	Status string `gorm:"size:32;index;default:editing;comment:会话状态"`
	Step   int    `gorm:"default:0;comment:当前编辑步骤"`

	FieldValues JSONMap                    `gorm:"type:json;comment:表单字段值"`
	Features    JSONMap                    `gorm:"type:json;comment:特性勾选组"`
	MediaKeys   datatypes.JSONSlice[string] `gorm:"comment:已暂存媒体的资产ID"`

	AdID      string `gorm:"size:64;comment:提交成功后的广告ID"`
	LastError string `gorm:"size:1024;comment:最近一次提交失败信息"`
}

func (*ListingSession) TableName() string {
	return "listing_sessions"
}

// CanSubmit 会话是否允许进入提交
func (s *ListingSession) CanSubmit() error {
	if s.Status != SessionStatusEditing && s.Status != SessionStatusFailed {
		return errors.New("只有编辑中的会话才能提交")
	}
	return nil
}

// SubmissionLog 每次提交尝试的流水
type SubmissionLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"index"`

	SessionID  int64          `gorm:"index;not null;comment:会话ID"`
	StatusCode int            `gorm:"comment:后端响应码"`
	Outcome    string         `gorm:"size:32;index;comment:结果分类"`
	Message    string         `gorm:"size:1024;comment:错误/成功信息"`
	FieldKeys  datatypes.JSON `gorm:"comment:提交的字段键序,审计用"`
}

func (*SubmissionLog) TableName() string {
	return "submission_logs"
}
