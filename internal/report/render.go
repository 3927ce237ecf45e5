package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"SevenDay/internal/model"
)

var contentTmpl = template.Must(template.New("content").Funcs(template.FuncMap{
	"join": strings.Join,
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}).Parse(`# {{.P.Cover.Title}}
{{.P.Cover.Subtitle}}
{{.P.Cover.ParticipantName}} · {{.P.Cover.Date}}

## {{index .H "profile"}}
{{.P.Profile.Summary}}
- {{.P.Profile.Gender}} · {{.P.Profile.YearsActive}} · {{.P.Profile.SelfRating}}
- {{.P.Profile.Style}} · {{.P.Profile.Influence}}

## {{index .H "stats"}}
- {{index .L "total_days"}}: {{deref .P.Stats.TotalDays}}
- {{index .L "total_media_items"}}: {{deref .P.Stats.TotalMediaItems}}
- {{index .L "last_activity_time"}}: {{.P.Stats.LastActivityTime}}
- {{index .L "most_frequent_activity"}}: {{.P.Stats.MostFrequentActivity}}
- {{index .L "keywords"}}: {{join .P.Stats.Keywords ", "}}

## {{index .H "analysis"}}
{{.P.Analysis.TechnicalInsights}}

### {{index .H "strengths"}}
{{range .P.Analysis.Strengths}}- {{.}}
{{end}}
### {{index .H "improvements"}}
{{range .P.Analysis.Improvements}}- {{.}}
{{end}}
## {{index .H "recommendations"}}
{{range .P.Recommendations}}- {{.Icon}} **{{.Title}}** ({{index $.L "frequency"}}: {{.Frequency}}): {{.Description}}
{{end}}
## {{index .H "peer_comparison"}}: {{.P.PeerComparison.ComparisonName}}
{{range .P.PeerComparison.Similarities}}- = {{.}}
{{end}}{{range .P.PeerComparison.Differences}}- ≠ {{.}}
{{end}}
## {{index .H "achievements"}}
**{{.P.Achievements.Badge}}**: {{.P.Achievements.BadgeDescription}}
{{index .L "next_goal"}}: {{.P.Achievements.NextGoal}}
`))

// RenderContent 由结构化结果确定性地生成长文本，不会再次请求模型
func RenderContent(p *model.ReportPayload, strs Strings) (string, error) {
	var buf bytes.Buffer
	err := contentTmpl.Execute(&buf, map[string]interface{}{
		"P": p,
		"H": strs.Headings,
		"L": strs.Labels,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render report content: %w", err)
	}
	return buf.String(), nil
}

// PostTitle 社区动态标题
func PostTitle(p *model.ReportPayload, strs Strings) string {
	return strings.ReplaceAll(strs.PostTitle, "{{TITLE}}", p.Cover.Title)
}

// PostBody 社区动态正文：摘要 + 徽章
func PostBody(p *model.ReportPayload, strs Strings) string {
	var b strings.Builder
	b.WriteString(p.Profile.Summary)
	b.WriteString("\n\n")
	b.WriteString(p.Achievements.Badge)
	b.WriteString(": ")
	b.WriteString(p.Achievements.BadgeDescription)
	if len(p.Stats.Keywords) > 0 {
		b.WriteString("\n#")
		b.WriteString(strings.Join(p.Stats.Keywords, " #"))
	}
	return b.String()
}
