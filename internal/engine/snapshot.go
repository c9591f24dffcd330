package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/notsao/tadibsync/internal/storage"
)

// Snapshot is a tenant's full state, used for export and restore.
type Snapshot struct {
	Tenant        string                       `json:"userId" yaml:"user_id"`
	ExportedAt    time.Time                    `json:"exportedAt" yaml:"exported_at"`
	Tasks         []storage.Task               `json:"tasks" yaml:"tasks"`
	Categories    []storage.Category           `json:"categories" yaml:"categories"`
	PointsHistory []storage.PointsHistoryEntry `json:"pointsHistory" yaml:"points_history"`
	Achievements  []storage.Achievement        `json:"achievements" yaml:"achievements"`
}

// Export reconciles achievements and returns everything stored for tenant.
func (s *Service) Export(ctx context.Context, tenant string) (*Snapshot, error) {
	achievements, err := s.LoadAchievements(ctx, tenant)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Tenant:        storage.NormalizeTenant(tenant),
		ExportedAt:    s.now(),
		Tasks:         tasks,
		Categories:    cats,
		PointsHistory: history,
		Achievements:  achievements,
	}, nil
}

// Import replaces tenant's stored state with snap in one batch where the
// backend supports it. Categories are normalized and the ledger is pruned
// first; achievements are reconciled afterwards so earnedAt values in snap
// survive.
func (s *Service) Import(ctx context.Context, tenant string, snap *Snapshot) error {
	if snap == nil {
		return ValidationError{Field: "snapshot", Reason: "required"}
	}
	cats, err := NormalizeCategories(snap.Categories)
	if err != nil {
		return err
	}

	entries := map[string][]byte{}
	for key, v := range map[string]any{
		storage.KeyTasks:         orEmpty(snap.Tasks),
		storage.KeyCategories:    orEmpty(cats),
		storage.KeyPointsHistory: orEmpty(PruneHistory(collapseHistory(snap.PointsHistory), s.now(), s.loc, s.retentionDays)),
		storage.KeyAchievements:  orEmpty(snap.Achievements),
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		entries[key] = data
	}
	if err := storage.PutAll(ctx, s.kv, tenant, entries); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	_, err = s.LoadAchievements(ctx, tenant)
	return err
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
