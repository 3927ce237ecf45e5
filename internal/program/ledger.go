package program

import (
	"time"

	"SevenDay/internal/model"
)

const (
	// ProgramDays 训练营天数
	ProgramDays = 7
	// UnlockDelay 前一天提交后需要等待的时长，边界包含
	UnlockDelay = 24 * time.Hour
)

// DayStatus 账本中每一天的状态
type DayStatus string

const (
	DayLocked      DayStatus = "locked"
	DayOpenPending DayStatus = "open_pending"
	DaySubmitted   DayStatus = "submitted"
	DayApproved    DayStatus = "approved"
	DayRejected    DayStatus = "rejected"
)

// Record 账本只关心打卡记录的这三个字段
type Record struct {
	Date        Date
	Review      model.ReviewStatus
	SubmittedAt time.Time
}

// Day 账本中的一格
type Day struct {
	Index  int       `json:"index"`
	Number int       `json:"day"`
	Date   Date      `json:"date"`
	Status DayStatus `json:"status"`
	// UnlocksAt 仅在因前一天提交未满 24 小时而锁定时给出
	UnlocksAt *time.Time `json:"unlocks_at,omitempty"`
}

// Ledger 7 天的状态数组
type Ledger struct {
	Start Date             `json:"start_date"`
	Days  [ProgramDays]Day `json:"days"`
}

// Evaluate 由开始日期与打卡记录推导每一天的状态。
// 纯函数，所有调用方都必须走这里，不要在别处重复解锁判断。
func Evaluate(start Date, records []Record, now time.Time) Ledger {
	byDate := make(map[Date]Record, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	ledger := Ledger{Start: start}
	for i := 0; i < ProgramDays; i++ {
		date := start.AddDays(i)
		day := Day{Index: i, Number: i + 1, Date: date}

		if rec, ok := byDate[date]; ok {
			day.Status = statusFromReview(rec.Review)
			ledger.Days[i] = day
			continue
		}

		if i == 0 {
			day.Status = DayOpenPending
			ledger.Days[i] = day
			continue
		}

		prev, ok := byDate[start.AddDays(i-1)]
		switch {
		case !ok:
			day.Status = DayLocked
		case Unlocked(prev.SubmittedAt, now):
			day.Status = DayOpenPending
		default:
			day.Status = DayLocked
			unlocksAt := prev.SubmittedAt.Add(UnlockDelay)
			day.UnlocksAt = &unlocksAt
		}
		ledger.Days[i] = day
	}

	return ledger
}

// Unlocked now - submittedAt >= 24h
func Unlocked(submittedAt, now time.Time) bool {
	return now.Sub(submittedAt) >= UnlockDelay
}

func statusFromReview(s model.ReviewStatus) DayStatus {
	switch s {
	case model.ReviewApproved:
		return DayApproved
	case model.ReviewRejected:
		return DayRejected
	default:
		return DaySubmitted
	}
}

// DayFor 返回 date 对应的账本格子，不在窗口内时 ok 为 false
func (l Ledger) DayFor(date Date) (Day, bool) {
	idx := date.DaysSince(l.Start)
	if idx < 0 || idx >= ProgramDays {
		return Day{}, false
	}
	return l.Days[idx], true
}

// ApprovedCount 审核通过的天数
func (l Ledger) ApprovedCount() int {
	n := 0
	for _, d := range l.Days {
		if d.Status == DayApproved {
			n++
		}
	}
	return n
}
