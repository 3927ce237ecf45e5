package model

import "time"

// ProgramStatus 训练营状态，只允许 not_started → in_progress → awaiting_report → success
// 唯一的回退是重置回 not_started
type ProgramStatus string

const (
	ProgramNotStarted     ProgramStatus = "not_started"
	ProgramInProgress     ProgramStatus = "in_progress"
	ProgramAwaitingReport ProgramStatus = "awaiting_report"
	ProgramSuccess        ProgramStatus = "success"
)

// Participant 参与者资料
type Participant struct {
	BaseModel
	Nickname        string `gorm:"type:varchar(64);not null;default:''" json:"nickname"`
	Gender          string `gorm:"type:varchar(16);not null;default:''" json:"gender"`
	YearsActive     int    `gorm:"not null;default:0" json:"years_active"`
	SkillLevel      string `gorm:"type:varchar(32);not null;default:''" json:"skill_level"`
	Goals           string `gorm:"type:text;not null;default:''" json:"goals"`
	PreferredLocale string `gorm:"type:varchar(16);not null;default:''" json:"preferred_locale"`

	// 训练营进度
	ProgramStartDate     *time.Time    `gorm:"type:date" json:"program_start_date,omitempty"`
	ProgramStatus        ProgramStatus `gorm:"type:varchar(24);not null;default:'not_started';index:idx_participants_status" json:"program_status"`
	SucceededAt          *time.Time    `gorm:"type:timestamptz" json:"succeeded_at,omitempty"`
	MembershipValidUntil *time.Time    `gorm:"type:timestamptz" json:"membership_valid_until,omitempty"`
}

// TableName 指定表名
func (Participant) TableName() string {
	return "participants"
}
