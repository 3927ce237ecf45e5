package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"SevenDay/internal/model"
)

// schemaExample 随系统提示词一起发给模型的结构说明
const schemaExample = `{
  "cover": {"title": "", "subtitle": "", "date": "", "participant_name": ""},
  "profile": {"gender": "", "years_active": "", "self_rating": "", "influence": "", "style": "", "summary": ""},
  "stats": {"total_days": 0, "total_media_items": 0, "last_activity_time": "", "most_frequent_activity": "", "keywords": [""]},
  "analysis": {"strengths": [""], "improvements": [""], "technical_insights": ""},
  "recommendations": [{"title": "", "description": "", "frequency": "", "icon": ""}],
  "peer_comparison": {"comparison_name": "", "similarities": [""], "differences": [""],
    "radar": {"axis_a": 0, "axis_b": 0, "axis_c": 0, "axis_d": 0, "axis_e": 0}},
  "achievements": {"badge": "", "badge_description": "", "next_goal": ""}
}
radar 各维度取值为 0-100 的整数 / radar values are integers in 0-100.`

// PromptInput 提示词所需的全部输入
type PromptInput struct {
	Participant *model.Participant
	CheckIns    []model.CheckIn
	Aggregate   Aggregate
	ReportDate  string
	Location    *time.Location
}

type promptParticipant struct {
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	YearsActive int    `json:"years_active"`
	SkillLevel  string `json:"skill_level,omitempty"`
	Goals       string `json:"goals,omitempty"`
}

type promptCheckIn struct {
	Day          int    `json:"day"`
	Date         string `json:"date"`
	SubmittedAt  string `json:"submitted_at"`
	ActivityType string `json:"activity_type,omitempty"`
	Notes        string `json:"notes,omitempty"`
	MediaItems   int    `json:"media_items"`
}

type promptBody struct {
	ReportDate  string            `json:"report_date"`
	Participant promptParticipant `json:"participant"`
	Facts       promptFacts       `json:"facts"`
	CheckIns    []promptCheckIn   `json:"check_ins"`
}

type promptFacts struct {
	TotalDays            int    `json:"total_days"`
	TotalMediaItems      int    `json:"total_media_items"`
	LastActivityTime     string `json:"last_activity_time"`
	MostFrequentActivity string `json:"most_frequent_activity,omitempty"`
}

// BuildPrompt 生成系统提示词与用户内容；语言只影响提示词，不影响字段名
func BuildPrompt(in PromptInput, strs Strings) (system, user string, err error) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	system = strings.ReplaceAll(strs.SystemPrompt, "{{LANGUAGE}}", strs.Language) + "\n" + schemaExample

	body := promptBody{
		ReportDate: in.ReportDate,
		Participant: promptParticipant{
			Name:        in.Participant.Nickname,
			Gender:      in.Participant.Gender,
			YearsActive: in.Participant.YearsActive,
			SkillLevel:  in.Participant.SkillLevel,
			Goals:       in.Participant.Goals,
		},
		Facts: promptFacts{
			TotalDays:            in.Aggregate.TotalDays,
			TotalMediaItems:      in.Aggregate.TotalMediaItems,
			LastActivityTime:     in.Aggregate.LastActivityTime.In(loc).Format(time.RFC3339),
			MostFrequentActivity: in.Aggregate.MostFrequentActivity,
		},
		CheckIns: make([]promptCheckIn, 0, len(in.CheckIns)),
	}

	for i, ci := range in.CheckIns {
		body.CheckIns = append(body.CheckIns, promptCheckIn{
			Day:          i + 1,
			Date:         ci.CheckInDate.Format("2006-01-02"),
			SubmittedAt:  ci.SubmittedAt.In(loc).Format(time.RFC3339),
			ActivityType: ci.ActivityType,
			Notes:        ci.Notes,
			MediaItems:   len(ci.MediaRefs),
		})
	}

	raw, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode prompt body: %w", err)
	}

	return system, string(raw), nil
}
