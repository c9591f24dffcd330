package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T, clock *testClock, opts ...Option) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	opts = append([]Option{WithClock(clock.Now), WithLocation(time.UTC)}, opts...)
	svc := NewService(storage.NewSQLiteKV(db), opts...)
	cleanup := func() {
		_ = db.Close()
	}
	return svc, cleanup
}

func at(day string, hour int) time.Time {
	d, err := time.ParseInLocation(DateLayout, day, time.UTC)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func intPtr(v int) *int { return &v }

func completedTask(id string, catID *int, points int, when time.Time) storage.Task {
	return storage.Task{
		ID:          id,
		Title:       id,
		CategoryID:  catID,
		Priority:    string(PriorityLow),
		Points:      points,
		Status:      string(StatusCompleted),
		CreatedAt:   when.Add(-time.Hour),
		CompletedAt: &when,
	}
}

func achievementFor(list []storage.Achievement, categoryID int, tier string) *storage.Achievement {
	for i := range list {
		if list[i].CategoryID == categoryID && list[i].Tier == tier {
			return &list[i]
		}
	}
	return nil
}

func TestComputePointsPerPriority(t *testing.T) {
	health := &storage.Category{ID: 1, Name: "Health", BasePoints: 20}
	cases := []struct {
		p    Priority
		want int
	}{
		{PriorityLow, 20},
		{PriorityMedium, 30},
		{PriorityHigh, 40},
		{Priority("urgent"), 20},
	}
	for _, tc := range cases {
		if got := ComputePoints(tc.p, health); got != tc.want {
			t.Fatalf("ComputePoints(%q, base 20)=%d, want %d", tc.p, got, tc.want)
		}
	}

	// 15 * 1.5 = 22.5 rounds half up.
	if got := ComputePoints(PriorityMedium, &storage.Category{BasePoints: 15}); got != 23 {
		t.Fatalf("ComputePoints(medium, base 15)=%d, want 23", got)
	}
	if got := ComputePoints(PriorityHigh, &storage.Category{BasePoints: -5}); got != 0 {
		t.Fatalf("negative base points=%d, want 0", got)
	}
}

func TestFallbackPointsWithoutCategory(t *testing.T) {
	if got := ComputePoints(PriorityHigh, nil); got != FallbackPoints {
		t.Fatalf("ComputePoints(high, nil)=%d, want %d", got, FallbackPoints)
	}

	cats := DefaultCategories()
	task := storage.Task{CategoryID: intPtr(99), Priority: "high"}
	if got := PointsForTask(task, cats); got != FallbackPoints {
		t.Fatalf("PointsForTask(missing category)=%d, want %d", got, FallbackPoints)
	}
	if got := CategoryName(cats, intPtr(99)); got != UncategorizedName {
		t.Fatalf("CategoryName(missing)=%q, want %q", got, UncategorizedName)
	}
	if got := CategoryName(cats, nil); got != UncategorizedName {
		t.Fatalf("CategoryName(nil)=%q, want %q", got, UncategorizedName)
	}
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]Priority{"": PriorityLow, "H": PriorityHigh, "med": PriorityMedium, " low ": PriorityLow} {
		got, err := ParsePriority(in)
		if err != nil {
			t.Fatalf("ParsePriority(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePriority(%q)=%q, want %q", in, got, want)
		}
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatalf("expected error for unknown priority")
	}
}

func TestStreakIsZeroWithoutCompletionToday(t *testing.T) {
	now := at("2026-03-10", 15)
	tasks := []storage.Task{
		completedTask("a", intPtr(1), 20, at("2026-03-09", 9)),
		completedTask("b", intPtr(1), 20, at("2026-03-08", 9)),
	}
	if got := ComputeStreak(tasks, now, time.UTC); got != 0 {
		t.Fatalf("streak=%d, want 0", got)
	}
	if got := ComputeStreak(nil, now, time.UTC); got != 0 {
		t.Fatalf("streak(no tasks)=%d, want 0", got)
	}
}

func TestStreakCountsConsecutiveDays(t *testing.T) {
	now := at("2026-03-10", 15)
	tasks := []storage.Task{
		completedTask("a", intPtr(1), 20, at("2026-03-10", 8)),
		completedTask("b", intPtr(1), 20, at("2026-03-10", 11)),
		completedTask("c", intPtr(2), 20, at("2026-03-09", 23)),
		completedTask("d", nil, 0, at("2026-03-08", 0)),
		completedTask("e", intPtr(1), 20, at("2026-03-06", 9)),
		{ID: "open", Status: string(StatusInProgress), CreatedAt: at("2026-03-07", 9)},
	}
	if got := ComputeStreak(tasks, now, time.UTC); got != 3 {
		t.Fatalf("streak=%d, want 3", got)
	}
}

func TestStreakUsesLocalCalendarDays(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 10th is still the 9th at UTC-5.
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	tasks := []storage.Task{
		completedTask("a", intPtr(1), 20, time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)),
		completedTask("b", intPtr(1), 20, time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)),
	}
	if got := ComputeStreak(tasks, now, loc); got != 2 {
		t.Fatalf("streak in UTC-5=%d, want 2", got)
	}
	if got := ComputeStreak(tasks, now, time.UTC); got != 1 {
		t.Fatalf("streak in UTC=%d, want 1", got)
	}
}

func TestStreakIgnoresFutureCompletions(t *testing.T) {
	now := at("2026-03-10", 15)
	tasks := []storage.Task{
		completedTask("today", intPtr(1), 20, at("2026-03-10", 8)),
		completedTask("tomorrow", intPtr(1), 20, at("2026-03-11", 8)),
		completedTask("next-year", intPtr(1), 20, at("2027-03-10", 8)),
	}
	if got := ComputeStreak(tasks, now, time.UTC); got != 1 {
		t.Fatalf("streak=%d, want 1", got)
	}
	if got := ComputeStreak(tasks[1:], now, time.UTC); got != 0 {
		t.Fatalf("streak(only future)=%d, want 0", got)
	}
}

func TestAggregateMonthToDate(t *testing.T) {
	now := at("2026-03-10", 15)
	tasks := []storage.Task{
		completedTask("a", intPtr(1), 40, at("2026-03-01", 0)),
		completedTask("b", intPtr(1), 30, at("2026-03-10", 14)),
		completedTask("c", intPtr(1), 99, at("2026-02-28", 23)),
		completedTask("d", intPtr(1), 99, at("2026-03-10", 16)),
		completedTask("e", intPtr(1), 10, now),
		{ID: "open", Points: 50, Status: string(StatusInProgress)},
	}
	got := Aggregate(tasks, MonthToDate(now, time.UTC))
	if got.TotalTasks != 3 || got.TotalPoints != 80 {
		t.Fatalf("month to date=%+v, want 3 tasks / 80 points", got)
	}
}

func TestProductivityCountsCompletionAtNow(t *testing.T) {
	now := at("2026-03-10", 15)
	tasks := []storage.Task{completedTask("a", intPtr(1), 100, now)}
	// 100/100*50 + 1*2 + 0
	if got := ProductivityScore(tasks, 0, now, time.UTC); got != 52 {
		t.Fatalf("productivity=%d, want 52", got)
	}
}

func TestReconcileKeepsAchievedAndEarnedAt(t *testing.T) {
	earned := at("2026-01-05", 10)
	stored := DeriveAchievements(1, 60)
	stored[0].EarnedAt = &earned

	// Points dropped below every threshold, e.g. after a task was deleted.
	now := at("2026-03-10", 15)
	merged := Reconcile(stored, DeriveAchievements(1, 10), now)

	bronze := achievementFor(merged, 1, "Bronze")
	if bronze == nil {
		t.Fatalf("bronze record missing")
	}
	if !bronze.Achieved {
		t.Fatalf("bronze achieved reverted to false")
	}
	if bronze.EarnedAt == nil || !bronze.EarnedAt.Equal(earned) {
		t.Fatalf("bronze earnedAt=%v, want %v", bronze.EarnedAt, earned)
	}
	if bronze.CurrentPoints != 10 {
		t.Fatalf("bronze currentPoints=%d, want 10", bronze.CurrentPoints)
	}
	if silver := achievementFor(merged, 1, "Silver"); silver == nil || silver.Achieved || silver.EarnedAt != nil {
		t.Fatalf("silver=%+v, want unearned", silver)
	}
}

func TestReconcileStampsTransitionsAndSorts(t *testing.T) {
	now := at("2026-03-10", 15)
	fresh := append(DeriveAchievements(2, 120), DeriveAchievements(1, 0)...)
	merged := Reconcile(nil, fresh, now)

	if len(merged) != 10 {
		t.Fatalf("len=%d, want 10", len(merged))
	}
	if merged[0].CategoryID != 1 || merged[0].Tier != "Bronze" || merged[9].Tier != "Diamond" {
		t.Fatalf("unexpected order: first=%s/%d last=%s", merged[0].Tier, merged[0].CategoryID, merged[9].Tier)
	}
	silver := achievementFor(merged, 2, "Silver")
	if silver == nil || !silver.Achieved || silver.EarnedAt == nil || !silver.EarnedAt.Equal(now) {
		t.Fatalf("silver=%+v, want earned at %v", silver, now)
	}

	// A stored record with earnedAt but achieved=false is treated as achieved.
	stored := DeriveAchievements(3, 0)
	stored[2].EarnedAt = &now
	merged = Reconcile(stored, DeriveAchievements(3, 0), now.Add(time.Hour))
	if gold := achievementFor(merged, 3, "Gold"); !gold.Achieved || !gold.EarnedAt.Equal(now) {
		t.Fatalf("gold=%+v, want achieved at %v", gold, now)
	}
}

func TestStatsPercentage(t *testing.T) {
	if got := Stats(nil); got.Total != 0 || got.Percentage != 0 {
		t.Fatalf("Stats(nil)=%+v, want zero", got)
	}

	list := Reconcile(nil, DeriveAchievements(1, 120), at("2026-03-10", 15))
	got := Stats(list)
	if got.Total != 5 || got.Earned != 2 || got.Percentage != 40 {
		t.Fatalf("stats=%+v, want 2/5 = 40%%", got)
	}
	if len(got.Categories) != 1 {
		t.Fatalf("categories=%d, want 1", len(got.Categories))
	}
	cs := got.Categories[0]
	if cs.Earned != 2 || cs.Total != 5 || cs.Next == nil || cs.Next.Tier != "Gold" {
		t.Fatalf("category stat=%+v, want next Gold", cs)
	}
}

func TestThreeHighHealthTasksEarnBronzeAndSilver(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	health := intPtr(1)
	var lastRes *CompleteResult
	for i := 0; i < 3; i++ {
		task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Run", CategoryID: health, Priority: PriorityHigh})
		if err != nil {
			t.Fatalf("CreateTask #%d: %v", i+1, err)
		}
		if task.Points != 40 {
			t.Fatalf("task points=%d, want 40", task.Points)
		}
		clock.advance(time.Minute)
		lastRes, err = svc.CompleteTask(ctx, "", task.ID)
		if err != nil {
			t.Fatalf("CompleteTask #%d: %v", i+1, err)
		}
	}
	if len(lastRes.NewlyEarned) != 1 || lastRes.NewlyEarned[0].Tier != "Silver" {
		t.Fatalf("newly earned on third completion=%+v, want Silver", lastRes.NewlyEarned)
	}
	if lastRes.Streak != 1 {
		t.Fatalf("streak=%d, want 1", lastRes.Streak)
	}

	list, err := svc.LoadAchievements(ctx, "")
	if err != nil {
		t.Fatalf("LoadAchievements: %v", err)
	}
	bronze := achievementFor(list, 1, "Bronze")
	silver := achievementFor(list, 1, "Silver")
	gold := achievementFor(list, 1, "Gold")
	if bronze == nil || silver == nil || gold == nil {
		t.Fatalf("missing tier records: %+v", list)
	}
	if !bronze.Achieved || !silver.Achieved || gold.Achieved {
		t.Fatalf("achieved bronze=%v silver=%v gold=%v, want true/true/false", bronze.Achieved, silver.Achieved, gold.Achieved)
	}
	if gold.CurrentPoints != 120 {
		t.Fatalf("gold currentPoints=%d, want 120", gold.CurrentPoints)
	}
	if math.Abs(gold.Progress-60) > 1e-9 {
		t.Fatalf("gold progress=%v, want 60", gold.Progress)
	}
	if gold.Category != "Health" {
		t.Fatalf("gold category=%q, want Health", gold.Category)
	}

	month, err := svc.MonthToDateStats(ctx, "")
	if err != nil {
		t.Fatalf("MonthToDateStats: %v", err)
	}
	if month.TotalTasks != 3 || month.TotalPoints != 120 {
		t.Fatalf("month=%+v, want 3 / 120", month)
	}

	history, err := svc.History(ctx, "")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Points != 120 || history[0].Tasks != 3 || history[0].Date != "2026-03-10" {
		t.Fatalf("history=%+v, want one 2026-03-10 entry of 120 points / 3 tasks", history)
	}
}

func TestCompleteTaskErrors(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	var nf NotFoundError
	if _, err := svc.CompleteTask(ctx, "", "missing"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Stretch", CategoryID: intPtr(1)})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "", task.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	var ve ValidationError
	if _, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "   "}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty title, got %v", err)
	}
}

func TestCategoriesRoundTripWithDefaults(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	cats, err := svc.LoadCategories(ctx, "")
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(cats) != len(DefaultCategories()) || cats[0].Name != "Health" || cats[0].BasePoints != 20 {
		t.Fatalf("seeded categories=%+v", cats)
	}

	saved, err := svc.SaveCategories(ctx, "", append(cats, storage.Category{Name: "Reading"}))
	if err != nil {
		t.Fatalf("SaveCategories: %v", err)
	}
	added := saved[len(saved)-1]
	if added.ID != 8 || added.BasePoints != 1 || added.Color != DefaultCategoryColor || added.Icon != DefaultCategoryIcon {
		t.Fatalf("added category=%+v, want id 8 with defaults", added)
	}

	reloaded, err := svc.LoadCategories(ctx, "")
	if err != nil {
		t.Fatalf("reload categories: %v", err)
	}
	if len(reloaded) != len(saved) {
		t.Fatalf("reloaded %d categories, want %d", len(reloaded), len(saved))
	}
	for i := range saved {
		if reloaded[i] != saved[i] {
			t.Fatalf("category %d=%+v, want %+v", i, reloaded[i], saved[i])
		}
	}

	// New categories get their five tiers immediately.
	list, err := svc.LoadAchievements(ctx, "")
	if err != nil {
		t.Fatalf("LoadAchievements: %v", err)
	}
	if len(list) != 5*len(saved) {
		t.Fatalf("achievements=%d, want %d", len(list), 5*len(saved))
	}

	var ve ValidationError
	dup := []storage.Category{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}}
	if _, err := svc.SaveCategories(ctx, "", dup); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for duplicate ids, got %v", err)
	}
}

func TestLoadCategoriesFillsMissingFields(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	stored := []storage.Category{{ID: 1, Name: "Health"}, {ID: 9, Name: "Garden"}}
	if err := svc.CategoryRepo().SaveAll(ctx, "", stored); err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	cats, err := svc.LoadCategories(ctx, "")
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if cats[0].BasePoints != 20 || cats[0].Color != "#22c55e" || cats[0].Icon != "Heart" {
		t.Fatalf("health=%+v, want filled from defaults", cats[0])
	}
	if cats[1].BasePoints != 1 || cats[1].Icon != DefaultCategoryIcon {
		t.Fatalf("garden=%+v, want generic defaults", cats[1])
	}
}

func TestSaveCategoriesRescoresOnlyInProgressTasks(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	done, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Done", CategoryID: intPtr(1), Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask done: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "", done.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	open, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Open", CategoryID: intPtr(1), Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask open: %v", err)
	}

	cats, err := svc.LoadCategories(ctx, "")
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	cats[0].BasePoints = 10
	if _, err := svc.SaveCategories(ctx, "", cats); err != nil {
		t.Fatalf("SaveCategories: %v", err)
	}

	gotDone, _ := svc.TaskRepo().Get(ctx, "", done.ID)
	gotOpen, _ := svc.TaskRepo().Get(ctx, "", open.ID)
	if gotDone.Points != 40 {
		t.Fatalf("completed task points=%d, want 40 (frozen)", gotDone.Points)
	}
	if gotOpen.Points != 20 {
		t.Fatalf("in-progress task points=%d, want 20", gotOpen.Points)
	}
}

func TestDeleteCategoryKeepsAchievementsAndUncategorizesTasks(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Hike", CategoryID: intPtr(4), Priority: PriorityHigh})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
			t.Fatalf("CompleteTask: %v", err)
		}
	}
	if err := svc.DeleteCategory(ctx, "", 4); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	list, err := svc.LoadAchievements(ctx, "")
	if err != nil {
		t.Fatalf("LoadAchievements: %v", err)
	}
	bronze := achievementFor(list, 4, "Bronze")
	if bronze == nil || !bronze.Achieved {
		t.Fatalf("bronze for deleted category=%+v, want kept and achieved", bronze)
	}

	tasks, _ := svc.LoadTasks(ctx, "")
	cats, _ := svc.LoadCategories(ctx, "")
	if got := CategoryName(cats, tasks[0].CategoryID); got != UncategorizedName {
		t.Fatalf("category name=%q, want %q", got, UncategorizedName)
	}

	var nf NotFoundError
	if err := svc.DeleteCategory(ctx, "", 4); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestHistoryPrunedAfterWrite(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	seed := []storage.PointsHistoryEntry{
		{Date: "2026-01-01", Points: 10, Tasks: 1},
		{Date: "2026-02-07", Points: 10, Tasks: 1},
		{Date: "2026-02-08", Points: 15, Tasks: 1},
		{Date: "2026-03-09", Points: 5, Tasks: 1},
	}
	if err := svc.HistoryRepo().SaveAll(ctx, "", seed); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Read", CategoryID: intPtr(3)})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	stored, err := svc.HistoryRepo().ListAll(ctx, "")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	want := []string{"2026-02-08", "2026-03-09", "2026-03-10"}
	if len(stored) != len(want) {
		t.Fatalf("history=%+v, want dates %v", stored, want)
	}
	for i, d := range want {
		if stored[i].Date != d {
			t.Fatalf("history[%d].Date=%q, want %q", i, stored[i].Date, d)
		}
	}
	if stored[2].Points != 15 {
		t.Fatalf("today points=%d, want 15", stored[2].Points)
	}
}

func TestAddToHistoryAccumulatesSameDay(t *testing.T) {
	now := at("2026-03-10", 20)
	h := AddToHistory(nil, 20, at("2026-03-10", 8), now, time.UTC, 30)
	h = AddToHistory(h, 30, at("2026-03-10", 19), now, time.UTC, 30)
	h = AddToHistory(h, -5, at("2026-03-10", 19), now, time.UTC, 30)
	if len(h) != 1 || h[0].Points != 50 || h[0].Tasks != 3 {
		t.Fatalf("history=%+v, want one entry of 50 points / 3 tasks", h)
	}
}

func TestUpdateTaskRecomputesWhileInProgress(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Report", CategoryID: intPtr(2)})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Points != 18 {
		t.Fatalf("points=%d, want 18", task.Points)
	}

	high := PriorityHigh
	updated, err := svc.UpdateTask(ctx, "", task.ID, UpdateTaskInput{Priority: &high})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Points != 36 {
		t.Fatalf("points after priority change=%d, want 36", updated.Points)
	}

	if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	low := PriorityLow
	title := "Report v2"
	updated, err = svc.UpdateTask(ctx, "", task.ID, UpdateTaskInput{Priority: &low, Title: &title})
	if err != nil {
		t.Fatalf("UpdateTask completed: %v", err)
	}
	if updated.Points != 36 || updated.Title != "Report v2" {
		t.Fatalf("completed task=%+v, want frozen 36 points and new title", updated)
	}

	if err := svc.DeleteTask(ctx, "", task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if got, _ := svc.TaskRepo().Get(ctx, "", task.ID); got != nil {
		t.Fatalf("task still present after delete")
	}
}

func TestResolveTaskIDByPrefix(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	tasks := []storage.Task{{ID: "abc123", Title: "a"}, {ID: "abd456", Title: "b"}}
	if err := svc.SaveTasks(ctx, "", tasks); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	if id, err := svc.ResolveTaskID(ctx, "", "abc"); err != nil || id != "abc123" {
		t.Fatalf("ResolveTaskID(abc)=%q, %v", id, err)
	}
	if err := svc.SaveTasks(ctx, "", append(tasks, storage.Task{ID: "ab", Title: "c"})); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	if id, err := svc.ResolveTaskID(ctx, "", "ab"); err != nil || id != "ab" {
		t.Fatalf("ResolveTaskID(ab) with an exact match=%q, %v", id, err)
	}
	var ve ValidationError
	if _, err := svc.ResolveTaskID(ctx, "", "a"); !errors.As(err, &ve) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	var nf NotFoundError
	if _, err := svc.ResolveTaskID(ctx, "", "zz"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCompletionPublishesEvent(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	var got []TaskCompleted
	svc.Events().Subscribe(CompletionSubscriberFunc(func(ctx context.Context, ev TaskCompleted) error {
		got = append(got, ev)
		return nil
	}))

	task, err := svc.CreateTask(ctx, "bob", CreateTaskInput{Title: "Call mom", CategoryID: intPtr(6), Priority: PriorityMedium})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "bob", task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("events=%d, want 1", len(got))
	}
	if got[0].Tenant != "bob" || got[0].TaskID != task.ID || got[0].Points != 15 || !got[0].At.Equal(clock.now) {
		t.Fatalf("event=%+v", got[0])
	}

	// Tenants are isolated.
	other, err := svc.LoadTasks(ctx, "")
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("default tenant sees %d tasks, want 0", len(other))
	}
}

func TestPublishJoinsSubscriberErrors(t *testing.T) {
	var d Dispatcher
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(CompletionSubscriberFunc(func(context.Context, TaskCompleted) error { calls++; return boom }))
	d.Subscribe(CompletionSubscriberFunc(func(context.Context, TaskCompleted) error { calls++; return nil }))

	err := d.Publish(context.Background(), TaskCompleted{})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish err=%v, want boom", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d, want 2", calls)
	}
}

func TestAliasMergingCreditsGroup(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock, WithAliasMerging(true))
	defer cleanup()
	ctx := context.Background()

	gym, err := svc.AddCategory(ctx, "", storage.Category{Name: "Gym", BasePoints: 20})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	for _, cid := range []int{1, gym.ID} {
		task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Workout", CategoryID: intPtr(cid), Priority: PriorityMedium})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
			t.Fatalf("CompleteTask: %v", err)
		}
	}

	list, err := svc.LoadAchievements(ctx, "")
	if err != nil {
		t.Fatalf("LoadAchievements: %v", err)
	}
	for _, cid := range []int{1, 4, gym.ID} {
		b := achievementFor(list, cid, "Bronze")
		if b == nil || b.CurrentPoints != 60 || !b.Achieved {
			t.Fatalf("category %d bronze=%+v, want 60 points achieved", cid, b)
		}
	}
	if w := achievementFor(list, 2, "Bronze"); w.CurrentPoints != 0 {
		t.Fatalf("work points=%d, want 0", w.CurrentPoints)
	}
}

func TestInsights(t *testing.T) {
	// 2026-03-10 is a Tuesday; the week starts Sunday 2026-03-08.
	now := at("2026-03-10", 15)
	tasks := []storage.Task{
		completedTask("a", intPtr(1), 60, at("2026-03-10", 8)),
		completedTask("b", intPtr(2), 40, at("2026-03-09", 13)),
		completedTask("c", intPtr(2), 500, at("2026-03-07", 18)),
		{ID: "d", CategoryID: intPtr(1), Status: string(StatusInProgress), DueDate: ptrTime(at("2026-03-12", 0))},
		{ID: "e", CategoryID: intPtr(99), Status: string(StatusInProgress)},
		{ID: "f", Status: string(StatusInProgress), DueDate: ptrTime(at("2026-03-11", 0))},
	}

	// 100 week points, 2 week tasks, streak 2: 50 + 4 + 4.
	if got := ProductivityScore(tasks, 2, now, time.UTC); got != 58 {
		t.Fatalf("ProductivityScore=%d, want 58", got)
	}
	if got := ProductivityScore(tasks, 50, at("2026-03-07", 23), time.UTC); got != 100 {
		t.Fatalf("ProductivityScore cap=%d, want 100", got)
	}
	if got := CompletionRate(tasks); got != 50 {
		t.Fatalf("CompletionRate=%d, want 50", got)
	}
	if got := CompletionRate(nil); got != 0 {
		t.Fatalf("CompletionRate(nil)=%d, want 0", got)
	}

	up := Upcoming(tasks, 0)
	if len(up) != 3 || up[0].ID != "f" || up[1].ID != "d" || up[2].ID != "e" {
		t.Fatalf("upcoming order=%v", up)
	}

	slots := TimeOfDay(tasks, time.UTC)
	want := map[TimeSlot]int{SlotMorning: 1, SlotAfternoon: 1, SlotEvening: 1, SlotNight: 0}
	for _, s := range slots {
		if s.Tasks != want[s.Slot] {
			t.Fatalf("slot %s=%d, want %d", s.Slot, s.Tasks, want[s.Slot])
		}
	}
	if SlotFor(at("2026-03-10", 23), time.UTC) != SlotNight || SlotFor(at("2026-03-10", 5), time.UTC) != SlotNight {
		t.Fatalf("late and early hours must be Night")
	}

	totals := CategoryTotals(tasks, DefaultCategories())
	if totals[0].Category != "Work" || totals[0].Points != 540 || totals[0].Completed != 2 || totals[0].Efficiency != 270 {
		t.Fatalf("top category=%+v", totals[0])
	}
	var uncategorized *CategoryTotal
	for i := range totals {
		if totals[i].Category == UncategorizedName {
			uncategorized = &totals[i]
		}
	}
	if uncategorized == nil || uncategorized.Total != 2 || uncategorized.Points != 0 {
		t.Fatalf("uncategorized=%+v, want 2 open tasks", uncategorized)
	}

	history := []storage.PointsHistoryEntry{{Date: "2026-03-10", Points: 60, Tasks: 1}, {Date: "2026-03-04", Points: 7, Tasks: 1}}
	trend := DailyTrend(history, tasks, now, time.UTC, 0)
	if len(trend) != DefaultTrendDays {
		t.Fatalf("trend len=%d, want %d", len(trend), DefaultTrendDays)
	}
	if trend[0].Date != "2026-03-04" || trend[0].Points != 7 || trend[6].Date != "2026-03-10" || trend[6].Tasks != 1 {
		t.Fatalf("trend=%+v", trend)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestDashboardAndSnapshot(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Practice", CategoryID: intPtr(7), Priority: PriorityHigh})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
			t.Fatalf("CompleteTask: %v", err)
		}
		clock.advance(24 * time.Hour)
	}
	clock.advance(-24 * time.Hour)
	if _, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Sketch"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	d, err := svc.Dashboard(ctx, "")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Streak != 2 || d.CompletedTasks != 2 || d.ActiveTasks != 1 || d.TotalPoints != 32 {
		t.Fatalf("dashboard=%+v", d)
	}
	if d.CompletionRate != 67 {
		t.Fatalf("completion rate=%d, want 67", d.CompletionRate)
	}

	snap, err := svc.Export(ctx, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snap.Tenant != storage.DefaultTenant || len(snap.Tasks) != 3 || len(snap.PointsHistory) != 2 {
		t.Fatalf("snapshot=%+v", snap)
	}

	mem := NewService(storage.NewMemoryKV(), WithClock(clock.Now), WithLocation(time.UTC))
	if err := mem.Import(ctx, "copy", snap); err != nil {
		t.Fatalf("Import: %v", err)
	}
	tasks, err := mem.LoadTasks(ctx, "copy")
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("imported tasks=%d, want 3", len(tasks))
	}
	streak, err := mem.Streak(ctx, "copy")
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 2 {
		t.Fatalf("imported streak=%d, want 2", streak)
	}
}

func TestServiceWindowCoversWholeDays(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc := NewService(storage.NewMemoryKV(), WithClock(clock.Now), WithLocation(time.UTC))

	w := svc.Window(at("2026-03-01", 15), at("2026-03-10", 3))
	if !w.Start.Equal(at("2026-03-01", 0)) || !w.End.Equal(at("2026-03-11", 0)) {
		t.Fatalf("window=%v..%v", w.Start, w.End)
	}
	if !w.Contains(at("2026-03-10", 23)) || w.Contains(at("2026-03-11", 0)) {
		t.Fatalf("window bounds are not half-open over whole days")
	}
}

func TestImportPrunesHistory(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	snap := &Snapshot{
		PointsHistory: []storage.PointsHistoryEntry{
			{Date: "2025-01-01", Points: 10, Tasks: 1},
			{Date: "2026-03-09", Points: 20, Tasks: 1},
			{Date: "2026-03-09", Points: 5, Tasks: 1},
		},
	}
	if err := svc.Import(ctx, "", snap); err != nil {
		t.Fatalf("Import: %v", err)
	}
	stored, err := svc.HistoryRepo().ListAll(ctx, "")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(stored) != 1 || stored[0].Date != "2026-03-09" || stored[0].Points != 25 || stored[0].Tasks != 2 {
		t.Fatalf("stored history=%+v, want one 2026-03-09 entry of 25 points / 2 tasks", stored)
	}
}

type failingBatchKV struct {
	*storage.MemoryKV
}

func (failingBatchKV) PutBatch(ctx context.Context, tenant string, entries map[string][]byte) error {
	return errors.New("disk full")
}

func TestCompleteTaskWriteFailureLeavesTaskInProgress(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	svc := NewService(failingBatchKV{storage.NewMemoryKV()}, WithClock(clock.Now), WithLocation(time.UTC))
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Stretch", CategoryID: intPtr(1)})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "", task.ID); err == nil {
		t.Fatalf("CompleteTask succeeded on a failing store")
	}

	got, err := svc.TaskRepo().Get(ctx, "", task.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if Status(got.Status) != StatusInProgress || got.CompletedAt != nil {
		t.Fatalf("task after failed completion=%+v, want in progress", got)
	}
	history, err := svc.HistoryRepo().ListAll(ctx, "")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history=%+v, want empty", history)
	}
}

func TestSameDayCompletionDoesNotReportPruning(t *testing.T) {
	clock := &testClock{now: at("2026-03-10", 9)}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := NewService(storage.NewMemoryKV(), WithClock(clock.Now), WithLocation(time.UTC), WithLogger(logger))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Read", CategoryID: intPtr(3)})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
			t.Fatalf("CompleteTask: %v", err)
		}
		clock.advance(time.Hour)
	}
	if strings.Contains(logs.String(), "history pruned") {
		t.Fatalf("unexpected pruning log:\n%s", logs.String())
	}

	if err := svc.HistoryRepo().SaveAll(ctx, "", append([]storage.PointsHistoryEntry{{Date: "2025-12-01", Points: 5, Tasks: 1}}, mustHistory(t, svc)...)); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	task, err := svc.CreateTask(ctx, "", CreateTaskInput{Title: "Read", CategoryID: intPtr(3)})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "", task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !strings.Contains(logs.String(), "history pruned") || !strings.Contains(logs.String(), "entries=1") {
		t.Fatalf("expected one pruned entry in logs:\n%s", logs.String())
	}
}

func mustHistory(t *testing.T, svc *Service) []storage.PointsHistoryEntry {
	t.Helper()
	h, err := svc.HistoryRepo().ListAll(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	return h
}
