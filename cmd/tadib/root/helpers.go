package root

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/storage"
	"github.com/notsao/tadibsync/internal/ui"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// resolveCategory accepts a numeric id or a case-insensitive name.
func resolveCategory(cats []storage.Category, ref string) (*int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		for _, c := range cats {
			if c.ID == n {
				id := c.ID
				return &id, nil
			}
		}
		return nil, engine.NotFoundError{Kind: "category", ID: ref}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			id := c.ID
			return &id, nil
		}
	}
	return nil, engine.NotFoundError{Kind: "category", ID: ref}
}

func parseDue(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(engine.DateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}

func categoryLabel(cats []storage.Category, id *int) string {
	name := engine.CategoryName(cats, id)
	for _, c := range cats {
		if id != nil && c.ID == *id {
			return ui.Swatch(c.Color, name)
		}
	}
	return ui.Muted.Render(name)
}

func taskLine(t storage.Task, cats []storage.Category) string {
	check := "[ ]"
	if engine.Status(t.Status) == engine.StatusCompleted {
		check = ui.Good.Render("[x]")
	}
	due := ""
	if t.DueDate != nil {
		due = " " + ui.Muted.Render(ui.IconCal+" "+t.DueDate.Format(engine.DateLayout))
	}
	return fmt.Sprintf("%s %s %s %s %s %s%s",
		check,
		ui.Muted.Render(shortID(t.ID)),
		t.Title,
		categoryLabel(cats, t.CategoryID),
		ui.PriorityText(t.Priority),
		ui.Gold.Render(fmt.Sprintf("+%d", t.Points)),
		due)
}
