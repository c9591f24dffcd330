package engine

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DefaultPriority is used when input is missing/invalid.
const DefaultPriority Priority = PriorityLow

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// DateLayout is the calendar-day key format used by the ledger and streaks.
const DateLayout = "2006-01-02"

// UncategorizedName is shown for tasks whose category no longer resolves.
const UncategorizedName = "Uncategorized"
