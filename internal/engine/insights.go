package engine

import (
	"context"
	"sort"
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

// DefaultTrendDays is the length of the daily trend shown on the dashboard.
const DefaultTrendDays = 7

type DayPoint struct {
	Date   string `json:"date" yaml:"date"`
	Points int    `json:"points" yaml:"points"`
	Tasks  int    `json:"tasks" yaml:"tasks"`
}

type CategoryTotal struct {
	CategoryID *int    `json:"categoryId" yaml:"category_id"`
	Category   string  `json:"category" yaml:"category"`
	Color      string  `json:"color" yaml:"color"`
	Points     int     `json:"points" yaml:"points"`
	Completed  int     `json:"completed" yaml:"completed"`
	Total      int     `json:"total" yaml:"total"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
}

type TimeSlot string

const (
	SlotMorning   TimeSlot = "Morning"
	SlotAfternoon TimeSlot = "Afternoon"
	SlotEvening   TimeSlot = "Evening"
	SlotNight     TimeSlot = "Night"
)

var timeSlots = []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening, SlotNight}

type SlotCount struct {
	Slot  TimeSlot `json:"slot" yaml:"slot"`
	Tasks int      `json:"tasks" yaml:"tasks"`
}

// DailyTrend returns one point per day for the last days days ending at now,
// oldest first. Points come from the ledger; task counts from completions.
func DailyTrend(history []storage.PointsHistoryEntry, tasks []storage.Task, now time.Time, loc *time.Location, days int) []DayPoint {
	loc = orLocal(loc)
	if days <= 0 {
		days = DefaultTrendDays
	}
	points := map[string]int{}
	for _, e := range history {
		points[e.Date] += e.Points
	}
	counts := map[string]int{}
	for _, t := range tasks {
		if Status(t.Status) == StatusCompleted && t.CompletedAt != nil {
			counts[dayKey(*t.CompletedAt, loc)]++
		}
	}

	out := make([]DayPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := dayKey(daysBefore(now, i, loc), loc)
		out = append(out, DayPoint{Date: day, Points: points[day], Tasks: counts[day]})
	}
	return out
}

// CategoryTotals sums completed points per category, sorted by points
// descending. Tasks whose category no longer resolves are grouped as
// uncategorized.
func CategoryTotals(tasks []storage.Task, cats []storage.Category) []CategoryTotal {
	index := map[int]int{}
	var out []CategoryTotal
	uncategorized := -1

	for _, t := range tasks {
		cat := findCategory(cats, t.CategoryID)
		var i int
		if cat == nil {
			if uncategorized < 0 {
				uncategorized = len(out)
				out = append(out, CategoryTotal{Category: UncategorizedName, Color: DefaultCategoryColor})
			}
			i = uncategorized
		} else {
			var ok bool
			i, ok = index[cat.ID]
			if !ok {
				i = len(out)
				index[cat.ID] = i
				id := cat.ID
				out = append(out, CategoryTotal{CategoryID: &id, Category: cat.Name, Color: cat.Color})
			}
		}
		ct := &out[i]
		ct.Total++
		if Status(t.Status) == StatusCompleted {
			ct.Completed++
			ct.Points += t.Points
		}
	}

	for i := range out {
		out[i].Efficiency = float64(out[i].Points) / float64(max(out[i].Total, 1))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

// ProductivityScore rates the current week on a 0-100 scale from points,
// completions and the streak.
func ProductivityScore(tasks []storage.Task, streak int, now time.Time, loc *time.Location) int {
	loc = orLocal(loc)
	week := Aggregate(tasks, Window{Start: startOfWeek(now, loc), End: throughNow(now)})
	score := float64(week.TotalPoints)/100*50 + float64(week.TotalTasks)*2 + float64(min(streak*2, 20))
	return min(roundHalfUp(score), 100)
}

// SlotFor classifies a clock hour: Morning 6-12, Afternoon 12-17, Evening
// 17-22, Night otherwise.
func SlotFor(t time.Time, loc *time.Location) TimeSlot {
	h := t.In(orLocal(loc)).Hour()
	switch {
	case h >= 6 && h < 12:
		return SlotMorning
	case h >= 12 && h < 17:
		return SlotAfternoon
	case h >= 17 && h < 22:
		return SlotEvening
	default:
		return SlotNight
	}
}

// TimeOfDay counts completions per slot. Every slot is present.
func TimeOfDay(tasks []storage.Task, loc *time.Location) []SlotCount {
	counts := map[TimeSlot]int{}
	for _, t := range tasks {
		if Status(t.Status) == StatusCompleted && t.CompletedAt != nil {
			counts[SlotFor(*t.CompletedAt, loc)]++
		}
	}
	out := make([]SlotCount, 0, len(timeSlots))
	for _, s := range timeSlots {
		out = append(out, SlotCount{Slot: s, Tasks: counts[s]})
	}
	return out
}

// CompletionRate is the rounded percentage of completed tasks, 0 with no tasks.
func CompletionRate(tasks []storage.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if Status(t.Status) == StatusCompleted {
			done++
		}
	}
	return roundHalfUp(float64(done) / float64(len(tasks)) * 100)
}

// Upcoming returns up to limit in-progress tasks by due date, undated last.
// A non-positive limit returns all of them.
func Upcoming(tasks []storage.Task, limit int) []storage.Task {
	var out []storage.Task
	for _, t := range tasks {
		if Status(t.Status) != StatusCompleted {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type Dashboard struct {
	Streak         int              `json:"streak" yaml:"streak"`
	Month          PeriodStats      `json:"month" yaml:"month"`
	CompletionRate int              `json:"completionRate" yaml:"completion_rate"`
	Productivity   int              `json:"productivityScore" yaml:"productivity_score"`
	Trend          []DayPoint       `json:"trend" yaml:"trend"`
	CategoryTotals []CategoryTotal  `json:"categoryTotals" yaml:"category_totals"`
	TimeOfDay      []SlotCount      `json:"timeOfDay" yaml:"time_of_day"`
	Upcoming       []storage.Task   `json:"upcoming" yaml:"upcoming"`
	Achievements   AchievementStats `json:"achievements" yaml:"achievements"`
	ActiveTasks    int              `json:"activeTasks" yaml:"active_tasks"`
	CompletedTasks int              `json:"completedTasks" yaml:"completed_tasks"`
	TotalPoints    int              `json:"totalPoints" yaml:"total_points"`
}

// DashboardUpcomingLimit caps the upcoming list on the dashboard.
const DashboardUpcomingLimit = 5

// Dashboard gathers everything the status views render in one pass.
func (s *Service) Dashboard(ctx context.Context, tenant string) (*Dashboard, error) {
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return nil, err
	}
	history, err := s.History(ctx, tenant)
	if err != nil {
		return nil, err
	}
	stats, err := s.AchievementStats(ctx, tenant)
	if err != nil {
		return nil, err
	}

	now := s.now()
	streak := ComputeStreak(tasks, now, s.loc)
	d := &Dashboard{
		Streak:         streak,
		Month:          Aggregate(tasks, MonthToDate(now, s.loc)),
		CompletionRate: CompletionRate(tasks),
		Productivity:   ProductivityScore(tasks, streak, now, s.loc),
		Trend:          DailyTrend(history, tasks, now, s.loc, DefaultTrendDays),
		CategoryTotals: CategoryTotals(tasks, cats),
		TimeOfDay:      TimeOfDay(tasks, s.loc),
		Upcoming:       Upcoming(tasks, DashboardUpcomingLimit),
		Achievements:   stats,
	}
	for _, t := range tasks {
		if Status(t.Status) == StatusCompleted {
			d.CompletedTasks++
			d.TotalPoints += t.Points
		} else {
			d.ActiveTasks++
		}
	}
	return d, nil
}
