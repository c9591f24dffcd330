package storage

import "time"

type Category struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	BasePoints int    `json:"basePoints" yaml:"base_points"`
	Color      string `json:"color" yaml:"color"`
	Icon       string `json:"icon" yaml:"icon"`
}

type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	CategoryID  *int       `json:"categoryId" yaml:"category_id"`
	Priority    string     `json:"priority" yaml:"priority"`
	Points      int        `json:"points" yaml:"points"` // frozen at create/update time
	Status      string     `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"created_at"`
	DueDate     *time.Time `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty" yaml:"completed_at,omitempty"`
}

// PointsHistoryEntry is one calendar day in the points ledger.
type PointsHistoryEntry struct {
	Date   string `json:"date" yaml:"date"` // YYYY-MM-DD
	Points int    `json:"points" yaml:"points"`
	Tasks  int    `json:"tasks" yaml:"tasks"`
}

type Achievement struct {
	ID            string     `json:"id" yaml:"id"`
	Category      string     `json:"category" yaml:"category"`
	CategoryID    int        `json:"categoryId" yaml:"category_id"`
	Tier          string     `json:"tier" yaml:"tier"`
	Threshold     int        `json:"threshold" yaml:"threshold"`
	Color         string     `json:"color" yaml:"color"`
	CurrentPoints int        `json:"currentPoints" yaml:"current_points"`
	Progress      float64    `json:"progress" yaml:"progress"`
	Achieved      bool       `json:"achieved" yaml:"achieved"`
	EarnedAt      *time.Time `json:"earnedAt" yaml:"earned_at"`
}
