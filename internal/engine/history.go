package engine

import (
	"sort"
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

// DefaultRetentionDays is how long ledger entries survive.
const DefaultRetentionDays = 30

// AddToHistory folds one completion into the ledger: same-day completions
// accumulate into that day's entry. The result is pruned against now and
// sorted by date. The input slice is not modified.
func AddToHistory(history []storage.PointsHistoryEntry, points int, at, now time.Time, loc *time.Location, retentionDays int) []storage.PointsHistoryEntry {
	loc = orLocal(loc)
	if points < 0 {
		points = 0
	}
	out := collapseHistory(history)

	day := dayKey(at, loc)
	found := false
	for i := range out {
		if out[i].Date == day {
			out[i].Points += points
			out[i].Tasks++
			found = true
			break
		}
	}
	if !found {
		out = append(out, storage.PointsHistoryEntry{Date: day, Points: points, Tasks: 1})
	}
	return PruneHistory(out, now, loc, retentionDays)
}

// PruneHistory drops entries dated before now minus retentionDays.
func PruneHistory(history []storage.PointsHistoryEntry, now time.Time, loc *time.Location, retentionDays int) []storage.PointsHistoryEntry {
	loc = orLocal(loc)
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := dayKey(daysBefore(now, retentionDays, loc), loc)

	out := make([]storage.PointsHistoryEntry, 0, len(history))
	for _, e := range history {
		// YYYY-MM-DD compares lexically in date order.
		if e.Date < cutoff {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// collapseHistory merges duplicate dates so at most one entry per day remains.
func collapseHistory(history []storage.PointsHistoryEntry) []storage.PointsHistoryEntry {
	out := make([]storage.PointsHistoryEntry, 0, len(history))
	index := map[string]int{}
	for _, e := range history {
		if i, ok := index[e.Date]; ok {
			out[i].Points += e.Points
			out[i].Tasks += e.Tasks
			continue
		}
		index[e.Date] = len(out)
		out = append(out, e)
	}
	return out
}
