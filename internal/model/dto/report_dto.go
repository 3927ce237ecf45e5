package dto

import "time"

// ========== Report 相关 DTO ==========

// GenerateReportRequest { participant_id, test_mode? }
type GenerateReportRequest struct {
	ParticipantID string `json:"participant_id"`
	TestMode      bool   `json:"test_mode"`
}

// StepData 后续步骤的执行结果
type StepData struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GenerateReportResponse { success: true, report_id, post_id? } 加上每一步的结果
type GenerateReportResponse struct {
	Success        bool       `json:"success"`
	ReportID       string     `json:"report_id"`
	PostID         string     `json:"post_id,omitempty"`
	FullySucceeded bool       `json:"fully_succeeded"`
	Replayed       bool       `json:"replayed,omitempty"`
	Steps          []StepData `json:"steps"`
}

// ReportData 报告详情
type ReportData struct {
	GeneratedAt    time.Time   `json:"generated_at"`
	StructuredData interface{} `json:"structured_data"`
	ID             string      `json:"id"`
	PostID         string      `json:"post_id,omitempty"`
	ProgramStart   string      `json:"program_start_date"`
	Content        string      `json:"content"`
	Locale         string      `json:"locale"`
	Version        string      `json:"version"`
	Outcome        string      `json:"outcome"`
}
