package engine

import (
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

type PeriodStats struct {
	TotalTasks  int `json:"totalTasks" yaml:"total_tasks"`
	TotalPoints int `json:"totalPoints" yaml:"total_points"`
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthToDate is the window from the first instant of now's month through
// now inclusive.
func MonthToDate(now time.Time, loc *time.Location) Window {
	return Window{Start: startOfMonth(now, orLocal(loc)), End: throughNow(now)}
}

// throughNow is the exclusive end of a window that must still count a
// completion stamped exactly at now.
func throughNow(now time.Time) time.Time {
	return now.Add(time.Nanosecond)
}

// Aggregate counts completed tasks in w and sums their stored points, i.e. the
// points as awarded, not as the category would score them today.
func Aggregate(tasks []storage.Task, w Window) PeriodStats {
	var out PeriodStats
	for _, t := range tasks {
		if Status(t.Status) != StatusCompleted || t.CompletedAt == nil {
			continue
		}
		if !w.Contains(*t.CompletedAt) {
			continue
		}
		out.TotalTasks++
		out.TotalPoints += t.Points
	}
	return out
}
