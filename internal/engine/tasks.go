package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notsao/tadibsync/internal/storage"
)

type CreateTaskInput struct {
	Title       string
	Description string
	CategoryID  *int
	Priority    Priority
	DueDate     *time.Time
}

// UpdateTaskInput carries optional changes; nil fields are left untouched.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	CategoryID    *int
	ClearCategory bool
	Priority      *Priority
	DueDate       *time.Time
	ClearDueDate  bool
}

// LoadTasks returns every task of the tenant in stored order.
func (s *Service) LoadTasks(ctx context.Context, tenant string) ([]storage.Task, error) {
	return s.tasks.ListAll(ctx, tenant)
}

// SaveTasks replaces the tenant's task list.
func (s *Service) SaveTasks(ctx context.Context, tenant string, tasks []storage.Task) error {
	return s.tasks.SaveAll(ctx, tenant, tasks)
}

// PreviewPoints scores a prospective task without storing anything.
func (s *Service) PreviewPoints(ctx context.Context, tenant string, p Priority, categoryID *int) (int, error) {
	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return 0, err
	}
	return ComputePoints(p, findCategory(cats, categoryID)), nil
}

func (s *Service) CreateTask(ctx context.Context, tenant string, in CreateTaskInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	prio := in.Priority
	if !prio.IsValid() {
		prio = DefaultPriority
	}

	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}

	t := storage.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  in.CategoryID,
		Priority:    string(prio),
		Points:      ComputePoints(prio, findCategory(cats, in.CategoryID)),
		Status:      string(StatusInProgress),
		CreatedAt:   s.now(),
		DueDate:     in.DueDate,
	}
	if err := s.tasks.SaveAll(ctx, tenant, append(tasks, t)); err != nil {
		return nil, fmt.Errorf("task insert: %w", err)
	}
	return &t, nil
}

// UpdateTask edits a task. Points are recomputed only while the task is in
// progress; a completed task keeps the points it was awarded.
func (s *Service) UpdateTask(ctx context.Context, tenant, id string, in UpdateTaskInput) (*storage.Task, error) {
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	idx := findTaskIndex(tasks, id)
	if idx < 0 {
		return nil, NotFoundError{Kind: "task", ID: id}
	}
	t := tasks[idx]

	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	switch {
	case in.ClearCategory:
		t.CategoryID = nil
	case in.CategoryID != nil:
		cid := *in.CategoryID
		t.CategoryID = &cid
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return nil, ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %q", *in.Priority)}
		}
		t.Priority = string(*in.Priority)
	}
	switch {
	case in.ClearDueDate:
		t.DueDate = nil
	case in.DueDate != nil:
		d := *in.DueDate
		t.DueDate = &d
	}

	if Status(t.Status) != StatusCompleted {
		cats, err := s.LoadCategories(ctx, tenant)
		if err != nil {
			return nil, err
		}
		t.Points = PointsForTask(t, cats)
	}

	tasks[idx] = t
	if err := s.tasks.SaveAll(ctx, tenant, tasks); err != nil {
		return nil, fmt.Errorf("task update: %w", err)
	}
	return &t, nil
}

// DeleteTask removes a task. Ledger entries and earned achievements stay.
func (s *Service) DeleteTask(ctx context.Context, tenant, id string) error {
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return err
	}
	idx := findTaskIndex(tasks, id)
	if idx < 0 {
		return NotFoundError{Kind: "task", ID: id}
	}
	tasks = append(tasks[:idx], tasks[idx+1:]...)
	if err := s.tasks.SaveAll(ctx, tenant, tasks); err != nil {
		return fmt.Errorf("task delete: %w", err)
	}
	return nil
}

// ResolveTaskID accepts a full id or a unique prefix of one.
func (s *Service) ResolveTaskID(ctx context.Context, tenant, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ValidationError{Field: "task id", Reason: "required"}
	}
	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return "", err
	}
	if findTaskIndex(tasks, ref) >= 0 {
		return ref, nil
	}
	var match string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", ValidationError{Field: "task id", Reason: fmt.Sprintf("prefix %q is ambiguous", ref)}
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", NotFoundError{Kind: "task", ID: ref}
	}
	return match, nil
}
