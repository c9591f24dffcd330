package engine

import (
	"math"

	"github.com/notsao/tadibsync/internal/storage"
)

// FallbackPoints is awarded when a task's category does not resolve.
const FallbackPoints = 0

func priorityMultiplier(p Priority) float64 {
	switch p {
	case PriorityMedium:
		return 1.5
	case PriorityHigh:
		return 2.0
	case PriorityLow:
		fallthrough
	default:
		return 1.0
	}
}

// roundHalfUp rounds to the nearest integer, halves away from zero for
// non-negative input.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ComputePoints returns round(basePoints * multiplier) for the category, or
// FallbackPoints when cat is nil. The value is intended to be frozen on the task.
func ComputePoints(p Priority, cat *storage.Category) int {
	if cat == nil {
		return FallbackPoints
	}
	base := cat.BasePoints
	if base < 0 {
		base = 0
	}
	return roundHalfUp(float64(base) * priorityMultiplier(p))
}

// PointsForTask resolves the task's category in cats and scores it.
func PointsForTask(t storage.Task, cats []storage.Category) int {
	return ComputePoints(parseStoredPriority(t.Priority), findCategory(cats, t.CategoryID))
}

func findCategory(cats []storage.Category, id *int) *storage.Category {
	if id == nil {
		return nil
	}
	for i := range cats {
		if cats[i].ID == *id {
			return &cats[i]
		}
	}
	return nil
}

// CategoryName returns the category's name or UncategorizedName.
func CategoryName(cats []storage.Category, id *int) string {
	if c := findCategory(cats, id); c != nil {
		return c.Name
	}
	return UncategorizedName
}
