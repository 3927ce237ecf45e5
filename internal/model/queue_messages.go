package model

// PublicationRetryMessage 报告已落库但动态发布失败时投递，由 worker 重试发布
type PublicationRetryMessage struct {
	MessageID     string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	ReportID      int64  `json:"report_id,string"`
	ParticipantID int64  `json:"participant_id,string"`
	Locale        string `json:"locale"`
	Attempt       int    `json:"attempt"`
	EnqueuedAt    string `json:"enqueued_at"`
}
