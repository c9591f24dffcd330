package engine

import (
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

// MaxStreakDays caps the backward walk regardless of the data.
const MaxStreakDays = 3660

// completionDays returns the set of local calendar days with at least one completion.
func completionDays(tasks []storage.Task, loc *time.Location) map[string]bool {
	days := map[string]bool{}
	for _, t := range tasks {
		if Status(t.Status) != StatusCompleted || t.CompletedAt == nil {
			continue
		}
		days[dayKey(*t.CompletedAt, loc)] = true
	}
	return days
}

// ComputeStreak counts consecutive calendar days ending at ref (inclusive) that
// have at least one completed task. A day without completions today yields 0.
func ComputeStreak(tasks []storage.Task, ref time.Time, loc *time.Location) int {
	loc = orLocal(loc)
	days := completionDays(tasks, loc)

	limit := len(days)
	if limit > MaxStreakDays {
		limit = MaxStreakDays
	}

	streak := 0
	for streak < limit {
		if !days[dayKey(daysBefore(ref, streak, loc), loc)] {
			break
		}
		streak++
	}
	return streak
}
