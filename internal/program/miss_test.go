package program

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SevenDay/internal/model"
)

func TestDetectMiss_FlagsFirstDayPastDeadline(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	records := []Record{
		{Date: start, Review: model.ReviewApproved, SubmittedAt: at(start, 7)},
		{Date: start.AddDays(1), Review: model.ReviewRejected, SubmittedAt: at(start.AddDays(1), 8)},
	}
	// 第 3 天截止时间之后
	now := at(start.AddDays(3), 1)

	miss := DetectMiss(testCal, start, records, model.ProgramInProgress, now)
	require.NotNil(t, miss)
	assert.Equal(t, 3, miss.Number)
	assert.Equal(t, start.AddDays(2), miss.Date)
	assert.True(t, miss.Deadline.Equal(start.AddDays(3).StartIn(testCal.Location())))
}

func TestDetectMiss_NotBeforeDeadline(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	records := []Record{{Date: start, Review: model.ReviewPending, SubmittedAt: at(start, 7)}}

	// 第 2 天 23:59，尚未截止
	now := start.AddDays(2).StartIn(testCal.Location()).Add(-time.Minute)
	assert.Nil(t, DetectMiss(testCal, start, records, model.ProgramInProgress, now))

	// 刚好到截止时刻
	now = start.AddDays(2).StartIn(testCal.Location())
	miss := DetectMiss(testCal, start, records, model.ProgramInProgress, now)
	require.NotNil(t, miss)
	assert.Equal(t, 2, miss.Number)
}

func TestDetectMiss_OnlyWhileInProgress(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	now := at(start.AddDays(5), 0)

	for _, status := range []model.ProgramStatus{model.ProgramNotStarted, model.ProgramAwaitingReport, model.ProgramSuccess} {
		assert.Nil(t, DetectMiss(testCal, start, nil, status, now), string(status))
	}
	assert.NotNil(t, DetectMiss(testCal, start, nil, model.ProgramInProgress, now))
	assert.Nil(t, DetectMiss(testCal, Date{}, nil, model.ProgramInProgress, now))
}

func TestDetectMiss_CompleteWeek(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	var records []Record
	for i := 0; i < ProgramDays; i++ {
		d := start.AddDays(i)
		records = append(records, Record{Date: d, Review: model.ReviewPending, SubmittedAt: at(d, 7)})
	}

	assert.Nil(t, DetectMiss(testCal, start, records, model.ProgramInProgress, at(start.AddDays(9), 0)))
}

func TestCanFinalize(t *testing.T) {
	start := NewDate(2026, time.April, 1)
	opens := FinalizeOpensAt(testCal, start)

	assert.True(t, opens.Equal(start.AddDays(7).StartIn(testCal.Location())))
	assert.False(t, CanFinalize(testCal, opens.Add(-time.Second), start, model.ProgramInProgress))
	assert.True(t, CanFinalize(testCal, opens, start, model.ProgramInProgress))
	assert.True(t, CanFinalize(testCal, at(start.AddDays(7), 8), start, model.ProgramInProgress))
	assert.False(t, CanFinalize(testCal, at(start.AddDays(8), 8), start, model.ProgramAwaitingReport))
	assert.False(t, CanFinalize(testCal, at(start.AddDays(8), 8), Date{}, model.ProgramInProgress))
}
