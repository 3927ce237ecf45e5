package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportOutcome 报告生成结果
type ReportOutcome string

const (
	ReportOutcomeSuccess ReportOutcome = "success"
)

// Report 一次流水线成功后写入的报告，写入后只允许补充 post_id
// 同一参与者同一期训练营（program_start_date）只会有一份正式报告
type Report struct {
	ID               int64         `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ParticipantID    int64         `gorm:"not null;uniqueIndex:idx_reports_run,where:test_mode = false;index" json:"participant_id,string"`
	ProgramStartDate time.Time     `gorm:"type:date;not null;uniqueIndex:idx_reports_run,where:test_mode = false" json:"program_start_date"`
	TestMode         bool          `gorm:"not null;default:false;uniqueIndex:idx_reports_run,where:test_mode = false" json:"test_mode"`
	StructuredData   ReportPayload `gorm:"type:jsonb;not null" json:"structured_data"`
	Content          string        `gorm:"type:text;not null" json:"content"`
	Locale           string        `gorm:"type:varchar(16);not null" json:"locale"`
	Version          string        `gorm:"type:varchar(16);not null" json:"version"`
	Outcome          ReportOutcome `gorm:"type:varchar(16);not null" json:"outcome"`
	GeneratedAt      time.Time     `gorm:"type:timestamptz;not null" json:"generated_at"`
	PostID           *int64        `gorm:"index" json:"post_id,omitempty,string"`
	CreatedAt        time.Time     `gorm:"not null;default:now()" json:"created_at"`
}

// TableName 指定表名
func (Report) TableName() string {
	return "reports"
}

func (p ReportPayload) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *ReportPayload) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported ReportPayload source %T", src)
	}
}
