package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

type CompleteResult struct {
	Task         storage.Task
	PointsEarned int
	Streak       int
	NewlyEarned  []storage.Achievement
}

// CompleteTask marks an in-progress task completed, records it in the ledger
// and reports any achievements the completion unlocked. The task keeps the
// points computed when it was created or last edited. The task list and the
// ledger are written in one batch, so a failed write leaves the task in
// progress.
func (s *Service) CompleteTask(ctx context.Context, tenant, id string) (*CompleteResult, error) {
	tenant = storage.NormalizeTenant(tenant)
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	idx := findTaskIndex(tasks, id)
	if idx < 0 {
		return nil, NotFoundError{Kind: "task", ID: id}
	}
	if Status(tasks[idx].Status) == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	before, err := s.LoadAchievements(ctx, tenant)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tasks[idx].Status = string(StatusCompleted)
	tasks[idx].CompletedAt = &now
	task := tasks[idx]

	history, pruned, err := s.ledgerWith(ctx, tenant, task)
	if err != nil {
		return nil, err
	}
	taskData, err := storage.EncodeList(storage.KeyTasks, tasks)
	if err != nil {
		return nil, err
	}
	historyData, err := storage.EncodeList(storage.KeyPointsHistory, history)
	if err != nil {
		return nil, err
	}
	if err := storage.PutAll(ctx, s.kv, tenant, map[string][]byte{
		storage.KeyTasks:         taskData,
		storage.KeyPointsHistory: historyData,
	}); err != nil {
		return nil, fmt.Errorf("task complete: %w", err)
	}
	if err := s.completionRecorded(ctx, tenant, task, pruned); err != nil {
		return nil, err
	}

	after, err := s.achievements.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}

	return &CompleteResult{
		Task:         task,
		PointsEarned: task.Points,
		Streak:       ComputeStreak(tasks, now, s.loc),
		NewlyEarned:  NewlyEarned(before, after),
	}, nil
}

// RecordCompletion adds a completed task's points to the ledger for its
// completion day, prunes old entries and publishes TaskCompleted.
func (s *Service) RecordCompletion(ctx context.Context, tenant string, t storage.Task) error {
	tenant = storage.NormalizeTenant(tenant)
	history, pruned, err := s.ledgerWith(ctx, tenant, t)
	if err != nil {
		return err
	}
	if err := s.history.SaveAll(ctx, tenant, history); err != nil {
		return fmt.Errorf("history append: %w", err)
	}
	return s.completionRecorded(ctx, tenant, t, pruned)
}

func completionTime(t storage.Task, now time.Time) time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return now
}

// ledgerWith returns the stored ledger with t folded in, and how many entries
// pruning dropped.
func (s *Service) ledgerWith(ctx context.Context, tenant string, t storage.Task) ([]storage.PointsHistoryEntry, int, error) {
	history, err := s.history.ListAll(ctx, tenant)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	at := completionTime(t, now)

	collapsed := collapseHistory(history)
	appended := len(collapsed) + 1
	day := dayKey(at, s.loc)
	for _, e := range collapsed {
		if e.Date == day {
			appended--
			break
		}
	}
	updated := AddToHistory(collapsed, t.Points, at, now, s.loc, s.retentionDays)
	return updated, appended - len(updated), nil
}

func (s *Service) completionRecorded(ctx context.Context, tenant string, t storage.Task, pruned int) error {
	at := completionTime(t, s.now())
	s.log.Info("completion recorded", "tenant", tenant, "task", t.ID, "points", t.Points, "day", dayKey(at, s.loc))
	if pruned > 0 {
		s.log.Debug("history pruned", "tenant", tenant, "entries", pruned)
	}
	return s.events.Publish(ctx, TaskCompleted{
		Tenant:     tenant,
		TaskID:     t.ID,
		CategoryID: t.CategoryID,
		Points:     t.Points,
		At:         at,
	})
}

// Streak returns the current completion streak as of now.
func (s *Service) Streak(ctx context.Context, tenant string) (int, error) {
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return 0, err
	}
	return ComputeStreak(tasks, s.now(), s.loc), nil
}

// Aggregate summarizes completions inside w.
func (s *Service) Aggregate(ctx context.Context, tenant string, w Window) (PeriodStats, error) {
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return PeriodStats{}, err
	}
	return Aggregate(tasks, w), nil
}

func (s *Service) MonthToDateStats(ctx context.Context, tenant string) (PeriodStats, error) {
	return s.Aggregate(ctx, tenant, MonthToDate(s.now(), s.loc))
}

// History returns the ledger pruned against the current time. Entries that
// aged out since the last write are dropped from the result, not from storage.
func (s *Service) History(ctx context.Context, tenant string) ([]storage.PointsHistoryEntry, error) {
	history, err := s.history.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return PruneHistory(collapseHistory(history), s.now(), s.loc, s.retentionDays), nil
}

// Window returns [start of from's day, start of the day after to) in the
// service's timezone.
func (s *Service) Window(from, to time.Time) Window {
	return Window{
		Start: startOfDay(from, s.loc),
		End:   startOfDay(daysBefore(to, -1, s.loc), s.loc),
	}
}
