package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReviewStatus 打卡审核状态
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"  // 已提交，待审核
	ReviewApproved ReviewStatus = "approved" // 审核通过
	ReviewRejected ReviewStatus = "rejected" // 审核驳回
)

// Valid 是否是合法的审核状态
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// CheckIn 每日训练打卡记录，(participant_id, check_in_date) 唯一
type CheckIn struct {
	BaseModel
	ParticipantID int64        `gorm:"not null;uniqueIndex:idx_check_ins_participant_date" json:"participant_id"`
	CheckInDate   time.Time    `gorm:"type:date;not null;uniqueIndex:idx_check_ins_participant_date" json:"check_in_date"`
	ReviewStatus  ReviewStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"review_status"`
	SubmittedAt   time.Time    `gorm:"type:timestamptz;not null" json:"submitted_at"`
	ReviewedAt    *time.Time   `gorm:"type:timestamptz" json:"reviewed_at,omitempty"`
	ActivityType  string       `gorm:"type:varchar(64);not null;default:''" json:"activity_type"`
	Notes         string       `gorm:"type:text;not null;default:''" json:"notes"`
	MediaRefs     StringList   `gorm:"type:jsonb;default:'[]'" json:"media_refs"`
}

// TableName 指定表名
func (CheckIn) TableName() string {
	return "check_ins"
}

// StringList 以 JSONB 数组存储的字符串列表
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported StringList source %T", src)
	}
	return json.Unmarshal(raw, (*[]string)(l))
}
