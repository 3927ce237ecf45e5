package model

// ReportPayload 模型返回的结构化报告，字段名固定，只有取值随语言变化
// validate 标签定义了哪些字段必须出现，缺失即视为解析失败
type ReportPayload struct {
	Cover           ReportCover            `json:"cover"`
	Profile         ReportProfile          `json:"profile"`
	Stats           ReportStats            `json:"stats"`
	Analysis        ReportAnalysis         `json:"analysis"`
	Recommendations []ReportRecommendation `json:"recommendations" validate:"required,min=1,dive"`
	PeerComparison  ReportPeerComparison   `json:"peer_comparison"`
	Achievements    ReportAchievements     `json:"achievements"`
}

type ReportCover struct {
	Title           string `json:"title" validate:"required"`
	Subtitle        string `json:"subtitle" validate:"required"`
	Date            string `json:"date" validate:"required"`
	ParticipantName string `json:"participant_name" validate:"required"`
}

type ReportProfile struct {
	Gender      string `json:"gender" validate:"required"`
	YearsActive string `json:"years_active" validate:"required"`
	SelfRating  string `json:"self_rating" validate:"required"`
	Influence   string `json:"influence" validate:"required"`
	Style       string `json:"style" validate:"required"`
	Summary     string `json:"summary" validate:"required"`
}

type ReportStats struct {
	TotalDays            *int     `json:"total_days" validate:"required,min=0"`
	TotalMediaItems      *int     `json:"total_media_items" validate:"required,min=0"`
	LastActivityTime     string   `json:"last_activity_time" validate:"required"`
	MostFrequentActivity string   `json:"most_frequent_activity" validate:"required"`
	Keywords             []string `json:"keywords" validate:"required,dive,required"`
}

type ReportAnalysis struct {
	Strengths         []string `json:"strengths" validate:"required,dive,required"`
	Improvements      []string `json:"improvements" validate:"required,dive,required"`
	TechnicalInsights string   `json:"technical_insights" validate:"required"`
}

type ReportRecommendation struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Frequency   string `json:"frequency" validate:"required"`
	Icon        string `json:"icon" validate:"required"`
}

type ReportPeerComparison struct {
	ComparisonName string      `json:"comparison_name" validate:"required"`
	Similarities   []string    `json:"similarities" validate:"required,dive,required"`
	Differences    []string    `json:"differences" validate:"required,dive,required"`
	Radar          ReportRadar `json:"radar"`
}

// ReportRadar 五个维度，取值 0-100
type ReportRadar struct {
	AxisA *int `json:"axis_a" validate:"required,min=0,max=100"`
	AxisB *int `json:"axis_b" validate:"required,min=0,max=100"`
	AxisC *int `json:"axis_c" validate:"required,min=0,max=100"`
	AxisD *int `json:"axis_d" validate:"required,min=0,max=100"`
	AxisE *int `json:"axis_e" validate:"required,min=0,max=100"`
}

type ReportAchievements struct {
	Badge            string `json:"badge" validate:"required"`
	BadgeDescription string `json:"badge_description" validate:"required"`
	NextGoal         string `json:"next_goal" validate:"required"`
}
