package storage

import "context"

type TaskRepo struct {
	kv KV
}

func NewTaskRepo(kv KV) *TaskRepo {
	return &TaskRepo{kv: kv}
}

func (r *TaskRepo) ListAll(ctx context.Context, tenant string) ([]Task, error) {
	return loadList[Task](ctx, r.kv, tenant, KeyTasks)
}

func (r *TaskRepo) SaveAll(ctx context.Context, tenant string, tasks []Task) error {
	return saveList(ctx, r.kv, tenant, KeyTasks, tasks)
}

// Get returns the task with id, or nil when it does not exist.
func (r *TaskRepo) Get(ctx context.Context, tenant, id string) (*Task, error) {
	all, err := r.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}
