package engine

import (
	"fmt"
	"strings"
)

// ParsePriority parses user input to a Priority.
// Supported: low, medium, high (plus l/m/h, lo/med/hi, normal).
// If input is empty, returns DefaultPriority.
func ParsePriority(input string) (Priority, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "":
		return DefaultPriority, nil
	case "low", "lo", "l":
		return PriorityLow, nil
	case "medium", "med", "m", "normal":
		return PriorityMedium, nil
	case "high", "hi", "h":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority: %q", input)
	}
}

// parseStoredPriority is lenient: stored values that do not parse score as low.
func parseStoredPriority(s string) Priority {
	p, err := ParsePriority(s)
	if err != nil {
		return DefaultPriority
	}
	return p
}
