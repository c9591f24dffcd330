package storage

import "context"

type CategoryRepo struct {
	kv KV
}

func NewCategoryRepo(kv KV) *CategoryRepo {
	return &CategoryRepo{kv: kv}
}

// ListAll returns the stored categories and whether the key existed at all, so
// callers can tell a first run apart from a user who deleted every category.
func (r *CategoryRepo) ListAll(ctx context.Context, tenant string) ([]Category, bool, error) {
	_, ok, err := r.kv.Get(ctx, tenant, KeyCategories)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return []Category{}, false, nil
	}
	cats, err := loadList[Category](ctx, r.kv, tenant, KeyCategories)
	if err != nil {
		return nil, true, err
	}
	return cats, true, nil
}

func (r *CategoryRepo) SaveAll(ctx context.Context, tenant string, cats []Category) error {
	return saveList(ctx, r.kv, tenant, KeyCategories, cats)
}
