package storage

import "context"

// HistoryRepo persists the per-day points ledger.
type HistoryRepo struct {
	kv KV
}

func NewHistoryRepo(kv KV) *HistoryRepo {
	return &HistoryRepo{kv: kv}
}

func (r *HistoryRepo) ListAll(ctx context.Context, tenant string) ([]PointsHistoryEntry, error) {
	return loadList[PointsHistoryEntry](ctx, r.kv, tenant, KeyPointsHistory)
}

func (r *HistoryRepo) SaveAll(ctx context.Context, tenant string, entries []PointsHistoryEntry) error {
	return saveList(ctx, r.kv, tenant, KeyPointsHistory, entries)
}
