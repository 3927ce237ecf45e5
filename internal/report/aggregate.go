package report

import (
	"sort"
	"time"

	"SevenDay/internal/model"
)

// Aggregate 调用模型前在本地汇总的训练数据
type Aggregate struct {
	TotalDays            int       `json:"total_days"`
	TotalMediaItems      int       `json:"total_media_items"`
	LastActivityTime     time.Time `json:"last_activity_time"`
	MostFrequentActivity string    `json:"most_frequent_activity"`
}

// Summarize 汇总打卡记录；最常见的训练类型并列时取字典序最小的
func Summarize(checkIns []model.CheckIn) Aggregate {
	var agg Aggregate
	counts := make(map[string]int)

	for _, ci := range checkIns {
		agg.TotalDays++
		agg.TotalMediaItems += len(ci.MediaRefs)
		if ci.SubmittedAt.After(agg.LastActivityTime) {
			agg.LastActivityTime = ci.SubmittedAt
		}
		if ci.ActivityType != "" {
			counts[ci.ActivityType]++
		}
	}

	activities := make([]string, 0, len(counts))
	for a := range counts {
		activities = append(activities, a)
	}
	sort.Slice(activities, func(i, j int) bool {
		if counts[activities[i]] != counts[activities[j]] {
			return counts[activities[i]] > counts[activities[j]]
		}
		return activities[i] < activities[j]
	})
	if len(activities) > 0 {
		agg.MostFrequentActivity = activities[0]
	}

	return agg
}
