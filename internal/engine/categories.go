package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/notsao/tadibsync/internal/storage"
)

const (
	DefaultCategoryColor = "#94a3b8"
	DefaultCategoryIcon  = "Tag"
	MinBasePoints        = 1
)

var defaultCategories = []storage.Category{
	{ID: 1, Name: "Health", BasePoints: 20, Color: "#22c55e", Icon: "Heart"},
	{ID: 2, Name: "Work", BasePoints: 18, Color: "#6366f1", Icon: "Briefcase"},
	{ID: 3, Name: "Learning", BasePoints: 15, Color: "#3b82f6", Icon: "GraduationCap"},
	{ID: 4, Name: "Fitness", BasePoints: 15, Color: "#ec4899", Icon: "Dumbbell"},
	{ID: 5, Name: "Personal", BasePoints: 12, Color: "#f59e0b", Icon: "Brain"},
	{ID: 6, Name: "Social", BasePoints: 10, Color: "#8b5cf6", Icon: "Users"},
	{ID: 7, Name: "Hobbies", BasePoints: 8, Color: "#06b6d4", Icon: "Palette"},
}

// DefaultCategories returns a copy of the built-in category set.
func DefaultCategories() []storage.Category {
	return append([]storage.Category(nil), defaultCategories...)
}

func defaultByName(name string) *storage.Category {
	for i := range defaultCategories {
		if strings.EqualFold(defaultCategories[i].Name, strings.TrimSpace(name)) {
			return &defaultCategories[i]
		}
	}
	return nil
}

// fillCategory fills empty fields from the same-named default category, then
// from the generic defaults.
func fillCategory(c storage.Category) storage.Category {
	c.Name = strings.TrimSpace(c.Name)
	def := defaultByName(c.Name)
	if c.BasePoints < MinBasePoints {
		if def != nil {
			c.BasePoints = def.BasePoints
		} else {
			c.BasePoints = MinBasePoints
		}
	}
	if strings.TrimSpace(c.Color) == "" {
		if def != nil {
			c.Color = def.Color
		} else {
			c.Color = DefaultCategoryColor
		}
	}
	if strings.TrimSpace(c.Icon) == "" {
		if def != nil {
			c.Icon = def.Icon
		} else {
			c.Icon = DefaultCategoryIcon
		}
	}
	return c
}

// NormalizeCategories fills missing fields and assigns ids to categories
// without one. Duplicate ids and empty names are rejected.
func NormalizeCategories(in []storage.Category) ([]storage.Category, error) {
	maxID := 0
	seen := map[int]bool{}
	for _, c := range in {
		if c.ID <= 0 {
			continue
		}
		if seen[c.ID] {
			return nil, ValidationError{Field: "category id", Reason: "duplicate id " + strconv.Itoa(c.ID)}
		}
		seen[c.ID] = true
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	out := make([]storage.Category, 0, len(in))
	for _, c := range in {
		if strings.TrimSpace(c.Name) == "" {
			return nil, ValidationError{Field: "category name", Reason: "required"}
		}
		if c.ID <= 0 {
			maxID++
			c.ID = maxID
		}
		out = append(out, fillCategory(c))
	}
	return out, nil
}

// LoadCategories returns the tenant's categories, seeding the defaults on the
// first load and filling fields missing from older stored data.
func (s *Service) LoadCategories(ctx context.Context, tenant string) ([]storage.Category, error) {
	stored, found, err := s.categories.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if !found {
		cats := DefaultCategories()
		if err := s.categories.SaveAll(ctx, tenant, cats); err != nil {
			return nil, err
		}
		return cats, nil
	}

	changed := false
	out := make([]storage.Category, 0, len(stored))
	for _, c := range stored {
		filled := fillCategory(c)
		if filled != c {
			changed = true
		}
		out = append(out, filled)
	}
	if changed {
		if err := s.categories.SaveAll(ctx, tenant, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SaveCategories normalizes and stores cats, rescores in-progress tasks whose
// category still resolves, and reconciles achievements so new categories get
// their tiers. The cascade covers only in-progress tasks rather than every
// existing task: completed tasks keep the points they were awarded, so period
// totals and achievements never move after the fact.
func (s *Service) SaveCategories(ctx context.Context, tenant string, cats []storage.Category) ([]storage.Category, error) {
	normalized, err := NormalizeCategories(cats)
	if err != nil {
		return nil, err
	}
	if err := s.categories.SaveAll(ctx, tenant, normalized); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListAll(ctx, tenant)
	if err != nil {
		return nil, err
	}
	rescored := 0
	for i := range tasks {
		if Status(tasks[i].Status) == StatusCompleted {
			continue
		}
		if findCategory(normalized, tasks[i].CategoryID) == nil {
			continue
		}
		if p := PointsForTask(tasks[i], normalized); p != tasks[i].Points {
			tasks[i].Points = p
			rescored++
		}
	}
	if rescored > 0 {
		if err := s.tasks.SaveAll(ctx, tenant, tasks); err != nil {
			return nil, err
		}
	}

	if _, err := s.LoadAchievements(ctx, tenant); err != nil {
		return nil, err
	}
	s.log.Info("categories saved", "tenant", storage.NormalizeTenant(tenant), "count", len(normalized), "rescored", rescored)
	return normalized, nil
}

// AddCategory appends c, assigning the next free id.
func (s *Service) AddCategory(ctx context.Context, tenant string, c storage.Category) (storage.Category, error) {
	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return storage.Category{}, err
	}
	c.ID = 0
	saved, err := s.SaveCategories(ctx, tenant, append(cats, c))
	if err != nil {
		return storage.Category{}, err
	}
	return saved[len(saved)-1], nil
}

// UpdateCategory replaces the category with c.ID.
func (s *Service) UpdateCategory(ctx context.Context, tenant string, c storage.Category) (storage.Category, error) {
	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return storage.Category{}, err
	}
	idx := -1
	for i := range cats {
		if cats[i].ID == c.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return storage.Category{}, NotFoundError{Kind: "category", ID: strconv.Itoa(c.ID)}
	}
	cats[idx] = c
	saved, err := s.SaveCategories(ctx, tenant, cats)
	if err != nil {
		return storage.Category{}, err
	}
	return saved[idx], nil
}

// DeleteCategory removes a category. Tasks referencing it are left alone and
// become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, tenant string, id int) error {
	cats, err := s.LoadCategories(ctx, tenant)
	if err != nil {
		return err
	}
	out := cats[:0:0]
	for _, c := range cats {
		if c.ID != id {
			out = append(out, c)
		}
	}
	if len(out) == len(cats) {
		return NotFoundError{Kind: "category", ID: strconv.Itoa(id)}
	}
	_, err = s.SaveCategories(ctx, tenant, out)
	return err
}
