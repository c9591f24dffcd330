package storage

import "context"

type AchievementRepo struct {
	kv KV
}

func NewAchievementRepo(kv KV) *AchievementRepo {
	return &AchievementRepo{kv: kv}
}

func (r *AchievementRepo) ListAll(ctx context.Context, tenant string) ([]Achievement, error) {
	return loadList[Achievement](ctx, r.kv, tenant, KeyAchievements)
}

func (r *AchievementRepo) SaveAll(ctx context.Context, tenant string, achievements []Achievement) error {
	return saveList(ctx, r.kv, tenant, KeyAchievements, achievements)
}
