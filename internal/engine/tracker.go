package engine

import (
	"context"

	"github.com/notsao/tadibsync/internal/storage"
)

// AchievementTracker keeps stored achievements in step with completions.
type AchievementTracker struct {
	svc *Service
}

func (t *AchievementTracker) OnTaskCompleted(ctx context.Context, ev TaskCompleted) error {
	_, err := t.svc.LoadAchievements(ctx, ev.Tenant)
	return err
}

// LoadAchievements reconciles the stored achievements against current task
// and category state, persists the merged list and returns it.
func (s *Service) LoadAchievements(ctx context.Context, tenant string) ([]storage.Achievement, error) {
	tenant = storage.NormalizeTenant(tenant)

	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return nil, err
	}
	stored, err := s.achievements.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}

	points := CumulativePoints(tasks)
	if s.mergeAliases {
		points = MergeAliasPoints(points, cats)
	}
	merged := Reconcile(stored, deriveAll(cats, stored, points), s.now())

	if err := s.achievements.SaveAll(ctx, tenant, merged); err != nil {
		return nil, err
	}
	for _, a := range NewlyEarned(stored, merged) {
		s.log.Info("achievement earned", "tenant", tenant, "id", a.ID, "category", a.Category, "tier", a.Tier)
	}
	return merged, nil
}

// AchievementStats reconciles and summarizes achievements.
func (s *Service) AchievementStats(ctx context.Context, tenant string) (AchievementStats, error) {
	list, err := s.LoadAchievements(ctx, tenant)
	if err != nil {
		return AchievementStats{}, err
	}
	return Stats(list), nil
}
