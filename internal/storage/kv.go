package storage

import (
	"context"
	"strings"
)

// DefaultTenant is used whenever a caller passes an empty tenant, which is the
// single-user deployment.
const DefaultTenant = "main_user"

const (
	KeyTasks         = "tasks"
	KeyCategories    = "categories"
	KeyPointsHistory = "points_history"
	KeyAchievements  = "achievements"
)

// Keys lists every key the engine reads or writes, in export order.
var Keys = []string{KeyTasks, KeyCategories, KeyPointsHistory, KeyAchievements}

// KV is the persistence boundary. Values are JSON documents; a missing key is
// reported with ok=false and is not an error.
type KV interface {
	Get(ctx context.Context, tenant, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, tenant, key string, value []byte) error
}

// Batcher is implemented by backends that can write several keys at once.
type Batcher interface {
	PutBatch(ctx context.Context, tenant string, entries map[string][]byte) error
}

// PutAll writes entries through PutBatch when kv supports it, else one by one.
func PutAll(ctx context.Context, kv KV, tenant string, entries map[string][]byte) error {
	if b, ok := kv.(Batcher); ok {
		return b.PutBatch(ctx, tenant, entries)
	}
	for key, value := range entries {
		if err := kv.Put(ctx, tenant, key, value); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeTenant trims the tenant and falls back to DefaultTenant.
func NormalizeTenant(tenant string) string {
	t := strings.TrimSpace(tenant)
	if t == "" {
		return DefaultTenant
	}
	return t
}
