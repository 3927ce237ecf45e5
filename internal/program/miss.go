package program

import (
	"time"

	"SevenDay/internal/model"
)

// Miss 已过截止时间却没有任何打卡记录的一天
type Miss struct {
	Index    int       `json:"index"`
	Number   int       `json:"day"`
	Date     Date      `json:"date"`
	Deadline time.Time `json:"deadline"`
}

// DetectMiss 找出第一个截止时间已过且没有记录的日子。
// 只读，不做任何修改；确认后的重置由调用方执行。
// 调用方负责去抖，检测本身每次都会重新得出同样的结果。
func DetectMiss(cal Calendar, start Date, records []Record, status model.ProgramStatus, now time.Time) *Miss {
	if status != model.ProgramInProgress || start.IsZero() {
		return nil
	}

	present := make(map[Date]struct{}, len(records))
	for _, r := range records {
		present[r.Date] = struct{}{}
	}

	for i := 0; i < ProgramDays; i++ {
		date := start.AddDays(i)
		deadline := cal.Deadline(date)
		if now.Before(deadline) {
			return nil
		}
		if _, ok := present[date]; !ok {
			return &Miss{Index: i, Number: i + 1, Date: date, Deadline: deadline}
		}
	}

	return nil
}
