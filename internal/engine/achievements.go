package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

// Tier is one fixed achievement level per category.
type Tier struct {
	Name      string
	Threshold int
	Color     string
}

// Tiers are ordered by ascending threshold.
var Tiers = []Tier{
	{Name: "Bronze", Threshold: 50, Color: "#CD7F32"},
	{Name: "Silver", Threshold: 100, Color: "#C0C0C0"},
	{Name: "Gold", Threshold: 200, Color: "#FFD700"},
	{Name: "Platinum", Threshold: 500, Color: "#E5E4E2"},
	{Name: "Diamond", Threshold: 1000, Color: "#B9F2FF"},
}

func tierByName(name string) (Tier, bool) {
	for _, t := range Tiers {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Tier{}, false
}

func achievementID(categoryID int, tier string) string {
	return fmt.Sprintf("%d_%s", categoryID, strings.ToLower(tier))
}

func tierProgress(points, threshold int) float64 {
	if points <= 0 || threshold <= 0 {
		return 0
	}
	return math.Min(float64(points)/float64(threshold)*100, 100)
}

// CumulativePoints sums stored points of completed tasks per category.
// Tasks without a category contribute nothing.
func CumulativePoints(tasks []storage.Task) map[int]int {
	out := map[int]int{}
	for _, t := range tasks {
		if Status(t.Status) != StatusCompleted || t.CategoryID == nil {
			continue
		}
		out[*t.CategoryID] += t.Points
	}
	return out
}

// DeriveAchievements builds the five tier records for a category from its
// cumulative points. EarnedAt is left nil; Reconcile stamps it.
func DeriveAchievements(categoryID int, cumulativePoints int) []storage.Achievement {
	out := make([]storage.Achievement, 0, len(Tiers))
	for _, tier := range Tiers {
		out = append(out, storage.Achievement{
			ID:            achievementID(categoryID, tier.Name),
			CategoryID:    categoryID,
			Tier:          tier.Name,
			Threshold:     tier.Threshold,
			Color:         tier.Color,
			CurrentPoints: cumulativePoints,
			Progress:      tierProgress(cumulativePoints, tier.Threshold),
			Achieved:      cumulativePoints >= tier.Threshold,
		})
	}
	return out
}

// deriveAll derives fresh records for every known category and for every
// category that still has stored achievements.
func deriveAll(cats []storage.Category, stored []storage.Achievement, points map[int]int) []storage.Achievement {
	names := map[int]string{}
	var ids []int
	for _, c := range cats {
		if _, ok := names[c.ID]; ok {
			continue
		}
		names[c.ID] = c.Name
		ids = append(ids, c.ID)
	}
	for _, a := range stored {
		if _, ok := names[a.CategoryID]; ok {
			continue
		}
		names[a.CategoryID] = ""
		ids = append(ids, a.CategoryID)
	}
	sort.Ints(ids)

	var out []storage.Achievement
	for _, id := range ids {
		for _, a := range DeriveAchievements(id, points[id]) {
			a.Category = names[id]
			out = append(out, a)
		}
	}
	return out
}

type achievementKey struct {
	categoryID int
	tier       string
}

// Reconcile merges freshly derived records into the stored ones. Points and
// progress follow the fresh values; Achieved never goes back to false and a
// set EarnedAt is never replaced. Records that become achieved here get
// EarnedAt = now. The result is sorted by category then threshold.
func Reconcile(stored, fresh []storage.Achievement, now time.Time) []storage.Achievement {
	merged := map[achievementKey]*storage.Achievement{}

	for _, s := range stored {
		tier, ok := tierByName(s.Tier)
		if !ok {
			continue
		}
		k := achievementKey{s.CategoryID, tier.Name}
		if cur, ok := merged[k]; ok {
			cur.Achieved = cur.Achieved || s.Achieved
			cur.EarnedAt = earliest(cur.EarnedAt, s.EarnedAt)
			continue
		}
		rec := s
		rec.ID = achievementID(s.CategoryID, tier.Name)
		rec.Tier = tier.Name
		rec.Threshold = tier.Threshold
		rec.Color = tier.Color
		merged[k] = &rec
	}

	for _, f := range fresh {
		tier, ok := tierByName(f.Tier)
		if !ok {
			continue
		}
		k := achievementKey{f.CategoryID, tier.Name}
		cur, ok := merged[k]
		if !ok {
			rec := f
			rec.EarnedAt = nil
			merged[k] = &rec
			continue
		}
		cur.CurrentPoints = f.CurrentPoints
		cur.Progress = f.Progress
		cur.Achieved = cur.Achieved || f.Achieved
		if f.Category != "" {
			cur.Category = f.Category
		}
	}

	out := make([]storage.Achievement, 0, len(merged))
	for _, rec := range merged {
		if rec.EarnedAt != nil {
			rec.Achieved = true
		}
		if rec.Achieved && rec.EarnedAt == nil {
			t := now
			rec.EarnedAt = &t
		}
		out = append(out, *rec)
	}
	sortAchievements(out)
	return out
}

func earliest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Before(*a):
		return b
	default:
		return a
	}
}

func sortAchievements(list []storage.Achievement) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CategoryID != list[j].CategoryID {
			return list[i].CategoryID < list[j].CategoryID
		}
		return list[i].Threshold < list[j].Threshold
	})
}

// NewlyEarned returns the records achieved in after but not in before.
func NewlyEarned(before, after []storage.Achievement) []storage.Achievement {
	had := map[string]bool{}
	for _, a := range before {
		if a.Achieved {
			had[a.ID] = true
		}
	}
	var out []storage.Achievement
	for _, a := range after {
		if a.Achieved && !had[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

type CategoryStat struct {
	CategoryID int                  `json:"categoryId" yaml:"category_id"`
	Category   string               `json:"category" yaml:"category"`
	Total      int                  `json:"total" yaml:"total"`
	Earned     int                  `json:"earned" yaml:"earned"`
	Next       *storage.Achievement `json:"nextAchievement,omitempty" yaml:"next_achievement,omitempty"`
}

type AchievementStats struct {
	Total      int            `json:"total" yaml:"total"`
	Earned     int            `json:"earned" yaml:"earned"`
	Percentage int            `json:"percentage" yaml:"percentage"`
	Categories []CategoryStat `json:"categoryStats" yaml:"category_stats"`
}

// Stats summarizes achievements overall and per category. Percentage is 0
// when there are no records.
func Stats(achievements []storage.Achievement) AchievementStats {
	var out AchievementStats
	index := map[int]int{}
	for _, a := range achievements {
		out.Total++
		if a.Achieved {
			out.Earned++
		}

		i, ok := index[a.CategoryID]
		if !ok {
			i = len(out.Categories)
			index[a.CategoryID] = i
			out.Categories = append(out.Categories, CategoryStat{CategoryID: a.CategoryID, Category: a.Category})
		}
		cs := &out.Categories[i]
		cs.Total++
		if a.Achieved {
			cs.Earned++
			continue
		}
		if cs.Next == nil || a.Threshold < cs.Next.Threshold {
			next := a
			cs.Next = &next
		}
	}
	if out.Total > 0 {
		out.Percentage = roundHalfUp(float64(out.Earned) / float64(out.Total) * 100)
	}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		return out.Categories[i].CategoryID < out.Categories[j].CategoryID
	})
	return out
}
