package model

import "time"

// Post 由报告派生的社区动态，每份报告至多一条
type Post struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ReportID      int64     `gorm:"not null;uniqueIndex" json:"report_id,string"`
	ParticipantID int64     `gorm:"not null;index" json:"participant_id,string"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	Locale        string    `gorm:"type:varchar(16);not null" json:"locale"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}
