package program

import (
	"time"

	"SevenDay/internal/model"
)

// FinalizeOpensAt 第 8 天的 00:00
func FinalizeOpensAt(cal Calendar, start Date) time.Time {
	return start.AddDays(ProgramDays).StartIn(cal.Location())
}

// CanFinalize 7 天窗口已完全结束且仍处于 in_progress
func CanFinalize(cal Calendar, now time.Time, start Date, status model.ProgramStatus) bool {
	if status != model.ProgramInProgress || start.IsZero() {
		return false
	}
	return !now.Before(FinalizeOpensAt(cal, start))
}
