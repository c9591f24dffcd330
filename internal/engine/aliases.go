package engine

import (
	"strings"

	"github.com/notsao/tadibsync/internal/storage"
)

// CategoryAliases groups category names that count as the same discipline.
var CategoryAliases = map[string][]string{
	"Health":   {"Health", "Gym", "Fitness", "Exercise"},
	"Work":     {"Work", "Business", "Office"},
	"Learning": {"Learning", "Education", "Study"},
	"Personal": {"Personal", "Self-improvement"},
}

// AliasGroup returns the canonical group for a category name, or "".
func AliasGroup(name string) string {
	n := strings.TrimSpace(name)
	for group, names := range CategoryAliases {
		for _, alias := range names {
			if strings.EqualFold(alias, n) {
				return group
			}
		}
	}
	return ""
}

// MergeAliasPoints credits every category in an alias group with the group's
// combined points. Categories outside any group keep their own total.
func MergeAliasPoints(points map[int]int, cats []storage.Category) map[int]int {
	groupTotal := map[string]int{}
	for _, c := range cats {
		if g := AliasGroup(c.Name); g != "" {
			groupTotal[g] += points[c.ID]
		}
	}

	out := make(map[int]int, len(points))
	for id, p := range points {
		out[id] = p
	}
	for _, c := range cats {
		if g := AliasGroup(c.Name); g != "" {
			out[c.ID] = groupTotal[g]
		}
	}
	return out
}
