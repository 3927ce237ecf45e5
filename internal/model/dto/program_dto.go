package dto

import "time"

// ========== Program 相关 DTO ==========

// LedgerDayData 账本中的一天
type LedgerDayData struct {
	UnlocksAt *time.Time `json:"unlocks_at,omitempty"`
	Date      string     `json:"date"`
	Status    string     `json:"status"`
	Day       int        `json:"day"`
}

// MissedDayData 需要确认重置的漏打卡日
type MissedDayData struct {
	Deadline time.Time `json:"deadline"`
	Date     string    `json:"date"`
	Day      int       `json:"day"`
}

// ProgramStateData 训练营进度
type ProgramStateData struct {
	FinalizeOpensAt      *time.Time      `json:"finalize_opens_at,omitempty"`
	MembershipValidUntil *time.Time      `json:"membership_valid_until,omitempty"`
	Miss                 *MissedDayData  `json:"miss,omitempty"`
	Status               string          `json:"status"`
	StartDate            string          `json:"start_date,omitempty"`
	Today                string          `json:"today"`
	Days                 []LedgerDayData `json:"days"`
	CanFinalize          bool            `json:"can_finalize"`
}

// SubmitCheckInRequest 当天打卡
type SubmitCheckInRequest struct {
	ActivityType string   `json:"activity_type"`
	Notes        string   `json:"notes"`
	MediaRefs    []string `json:"media_refs"`
}

// CheckInData 打卡记录
type CheckInData struct {
	SubmittedAt  time.Time `json:"submitted_at"`
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	ReviewStatus string    `json:"review_status"`
	Day          int       `json:"day,omitempty"`
}

// ResetProgramRequest 重置必须显式确认
type ResetProgramRequest struct {
	Confirm bool `json:"confirm"`
}

// ResetProgramData 重置结果
type ResetProgramData struct {
	Status          string `json:"status"`
	DeletedCheckIns int64  `json:"deleted_check_ins"`
	AlreadyReset    bool   `json:"already_reset"`
}

// ReviewCheckInRequest 审核打卡
type ReviewCheckInRequest struct {
	Status string `json:"status"`
}
