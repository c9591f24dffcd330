package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// RecordFile keeps one JSON document per user in a single flat file:
//
//	{"users": [{"userId": "...", "tasks": [...], "categories": [...], ...}]}
type RecordFile struct {
	mu   sync.Mutex
	path string
}

type userRecord struct {
	UserID        string          `json:"userId"`
	Tasks         json.RawMessage `json:"tasks,omitempty"`
	Categories    json.RawMessage `json:"categories,omitempty"`
	PointsHistory json.RawMessage `json:"pointsHistory,omitempty"`
	Achievements  json.RawMessage `json:"achievements,omitempty"`
}

type recordDocument struct {
	Users []userRecord `json:"users"`
}

func NewRecordFile(path string) *RecordFile {
	return &RecordFile{path: path}
}

func (f *RecordFile) Path() string { return f.path }

func (f *RecordFile) Get(ctx context.Context, tenant, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, err
	}
	rec := doc.find(NormalizeTenant(tenant))
	if rec == nil {
		return nil, false, nil
	}
	field, err := rec.field(key)
	if err != nil {
		return nil, false, err
	}
	if len(*field) == 0 {
		return nil, false, nil
	}
	out := make([]byte, len(*field))
	copy(out, *field)
	return out, true, nil
}

func (f *RecordFile) Put(ctx context.Context, tenant, key string, value []byte) error {
	return f.PutBatch(ctx, tenant, map[string][]byte{key: value})
}

func (f *RecordFile) PutBatch(ctx context.Context, tenant string, entries map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	t := NormalizeTenant(tenant)
	rec := doc.find(t)
	if rec == nil {
		doc.Users = append(doc.Users, userRecord{UserID: t})
		rec = &doc.Users[len(doc.Users)-1]
	}
	for key, value := range entries {
		field, err := rec.field(key)
		if err != nil {
			return err
		}
		if !json.Valid(value) {
			return fmt.Errorf("record put %s: value is not valid json", key)
		}
		*field = append(json.RawMessage(nil), value...)
	}
	return f.write(doc)
}

func (f *RecordFile) Tenants(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(doc.Users))
	for _, u := range doc.Users {
		out = append(out, u.UserID)
	}
	sort.Strings(out)
	return out, nil
}

func (f *RecordFile) read() (*recordDocument, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &recordDocument{}, nil
		}
		return nil, fmt.Errorf("record read: %w", err)
	}
	var doc recordDocument
	if len(data) == 0 {
		return &doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Key: f.path, Err: err}
	}
	return &doc, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (f *RecordFile) write(doc *recordDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("record marshal: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("record mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tadibsync-*.json")
	if err != nil {
		return fmt.Errorf("record temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("record write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("record close: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("record rename: %w", err)
	}
	return nil
}

func (d *recordDocument) find(userID string) *userRecord {
	for i := range d.Users {
		if d.Users[i].UserID == userID {
			return &d.Users[i]
		}
	}
	return nil
}

func (r *userRecord) field(key string) (*json.RawMessage, error) {
	switch key {
	case KeyTasks:
		return &r.Tasks, nil
	case KeyCategories:
		return &r.Categories, nil
	case KeyPointsHistory:
		return &r.PointsHistory, nil
	case KeyAchievements:
		return &r.Achievements, nil
	default:
		return nil, fmt.Errorf("record: unknown key %q", key)
	}
}
