package program

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"SevenDay/internal/model"
)

var testCal = NewCalendar(8)

// at 构造 UTC+8 下 date 当天 hour 点的时刻
func at(date Date, hour int) time.Time {
	return date.StartIn(testCal.Location()).Add(time.Duration(hour) * time.Hour)
}

func statuses(l Ledger) []DayStatus {
	out := make([]DayStatus, 0, ProgramDays)
	for _, d := range l.Days {
		out = append(out, d.Status)
	}
	return out
}

func TestEvaluate_FreshProgram(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	ledger := Evaluate(start, nil, at(start, 9))

	want := []DayStatus{DayOpenPending, DayLocked, DayLocked, DayLocked, DayLocked, DayLocked, DayLocked}
	if diff := cmp.Diff(want, statuses(ledger)); diff != "" {
		t.Errorf("ledger mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, ledger.Days[0].Number)
	assert.Equal(t, start.AddDays(6), ledger.Days[6].Date)
}

func TestEvaluate_RecordStatusWinsForItsDay(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	records := []Record{
		{Date: start, Review: model.ReviewRejected, SubmittedAt: at(start, 7)},
		{Date: start.AddDays(1), Review: model.ReviewPending, SubmittedAt: at(start.AddDays(1), 8)},
		{Date: start.AddDays(2), Review: model.ReviewApproved, SubmittedAt: at(start.AddDays(2), 8)},
	}

	ledger := Evaluate(start, records, at(start.AddDays(2), 12))

	want := []DayStatus{DayRejected, DaySubmitted, DayApproved, DayLocked, DayLocked, DayLocked, DayLocked}
	if diff := cmp.Diff(want, statuses(ledger)); diff != "" {
		t.Errorf("ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_UnlockBoundaryIsInclusive(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	submitted := at(start, 7)
	records := []Record{{Date: start, Review: model.ReviewPending, SubmittedAt: submitted}}

	tests := []struct {
		name string
		now  time.Time
		want DayStatus
	}{
		{name: "one nanosecond early", now: submitted.Add(UnlockDelay - time.Nanosecond), want: DayLocked},
		{name: "exactly 24h", now: submitted.Add(UnlockDelay), want: DayOpenPending},
		{name: "later", now: submitted.Add(30 * time.Hour), want: DayOpenPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := Evaluate(start, records, tt.now)
			assert.Equal(t, tt.want, ledger.Days[1].Status)
			assert.Equal(t, DayLocked, ledger.Days[2].Status)
		})
	}
}

func TestEvaluate_LockedDayReportsUnlockTime(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	submitted := at(start, 20)
	ledger := Evaluate(start, []Record{{Date: start, Review: model.ReviewApproved, SubmittedAt: submitted}}, at(start, 21))

	if assert.NotNil(t, ledger.Days[1].UnlocksAt) {
		assert.True(t, ledger.Days[1].UnlocksAt.Equal(submitted.Add(24*time.Hour)))
	}
	assert.Nil(t, ledger.Days[2].UnlocksAt)
}

// 对任意 i>0：第 i 天开放或已有结果，当且仅当第 i-1 天的记录提交已满 24 小时（或第 i 天本身有记录）
func TestEvaluate_UnlockProperty(t *testing.T) {
	start := NewDate(2026, time.June, 10)
	now := at(start.AddDays(4), 10)

	records := []Record{
		{Date: start, Review: model.ReviewApproved, SubmittedAt: at(start, 7)},
		{Date: start.AddDays(1), Review: model.ReviewPending, SubmittedAt: at(start.AddDays(2), 9)},
		{Date: start.AddDays(3), Review: model.ReviewPending, SubmittedAt: at(start.AddDays(4), 9)},
	}
	byDate := map[Date]Record{}
	for _, r := range records {
		byDate[r.Date] = r
	}

	ledger := Evaluate(start, records, now)
	assert.Contains(t, []DayStatus{DayOpenPending, DaySubmitted, DayApproved, DayRejected}, ledger.Days[0].Status)

	for i := 1; i < ProgramDays; i++ {
		day := ledger.Days[i]
		if _, own := byDate[day.Date]; own {
			assert.NotEqual(t, DayLocked, day.Status, "day %d has its own record", day.Number)
			continue
		}
		prev, ok := byDate[day.Date.AddDays(-1)]
		unlocked := ok && now.Sub(prev.SubmittedAt) >= UnlockDelay
		assert.Equal(t, unlocked, day.Status == DayOpenPending, "day %d", day.Number)
	}
}

func TestEvaluate_FullWeekScenario(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	var records []Record
	for i := 0; i < ProgramDays; i++ {
		d := start.AddDays(i)
		records = append(records, Record{Date: d, Review: model.ReviewApproved, SubmittedAt: at(d, 7)})
	}

	ledger := Evaluate(start, records, at(start.AddDays(7), 8))
	for _, d := range ledger.Days {
		assert.Equal(t, DayApproved, d.Status, "day %d", d.Number)
	}
	assert.Equal(t, 7, ledger.ApprovedCount())
}

func TestLedger_DayFor(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	ledger := Evaluate(start, nil, at(start, 1))

	day, ok := ledger.DayFor(start.AddDays(6))
	assert.True(t, ok)
	assert.Equal(t, 7, day.Number)

	_, ok = ledger.DayFor(start.AddDays(7))
	assert.False(t, ok)
	_, ok = ledger.DayFor(start.AddDays(-1))
	assert.False(t, ok)
}
