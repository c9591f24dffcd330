package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// CorruptError is returned when a stored document cannot be decoded.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt stored data for %s: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// loadList decodes the JSON array under key. A missing key yields an empty list.
func loadList[T any](ctx context.Context, kv KV, tenant, key string) ([]T, error) {
	data, ok, err := kv.Get(ctx, tenant, key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &CorruptError{Key: key, Err: err}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// EncodeList marshals items for key the way the repos store them, so callers
// can combine several keys in one PutAll.
func EncodeList[T any](key string, items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", key, err)
	}
	return data, nil
}

func saveList[T any](ctx context.Context, kv KV, tenant, key string, items []T) error {
	data, err := EncodeList(key, items)
	if err != nil {
		return err
	}
	if err := kv.Put(ctx, tenant, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
