package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/notsao/tadibsync/internal/engine"
	"github.com/notsao/tadibsync/internal/storage"
	"github.com/notsao/tadibsync/internal/ui"
)

const sidebarWidth = 34

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	tenant string

	keys keyMap
	help help.Model
	bar  progress.Model

	width  int
	height int

	dash  *engine.Dashboard
	tasks []storage.Task
	cats  []storage.Category

	showCompleted bool
	selected      int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	dash  *engine.Dashboard
	tasks []storage.Task
	cats  []storage.Category
	err   error
}

type completedMsg struct {
	id  string
	res *engine.CompleteResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, tenant string) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		tenant:  tenant,
		keys:    defaultKeyMap(),
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(14), progress.WithoutPercentage()),
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		dash, err := m.svc.Dashboard(m.ctx, m.tenant)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.LoadTasks(m.ctx, m.tenant)
		if err != nil {
			return loadedMsg{err: err}
		}
		cats, err := m.svc.LoadCategories(m.ctx, m.tenant)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{dash: dash, tasks: tasks, cats: cats}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, m.tenant, id)
		return completedMsg{id: id, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.dash = msg.dash
		m.tasks = msg.tasks
		m.cats = msg.cats
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Completed %q: +%d points, streak %d", msg.res.Task.Title, msg.res.PointsEarned, msg.res.Streak)
		for _, a := range msg.res.NewlyEarned {
			m.lastLog += fmt.Sprintf(" | %s %s %s", ui.IconTrophy, a.Category, a.Tier)
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case key.Matches(msg, m.keys.Toggle):
			m.showCompleted = !m.showCompleted
			m.clampSelection()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.visibleTasks())-1 {
				m.selected++
			}
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			visible := m.visibleTasks()
			if m.selected < 0 || m.selected >= len(visible) {
				return m, nil
			}
			t := visible[m.selected]
			if engine.Status(t.Status) == engine.StatusCompleted {
				m.lastLog = "Already completed."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %q…", t.Title)
			return m, m.completeCmd(t.ID)
		}
	}
	return m, nil
}

// visibleTasks lists in-progress tasks by due date, followed by completed
// ones when they are shown.
func (m boardModel) visibleTasks() []storage.Task {
	out := engine.Upcoming(m.tasks, 0)
	if !m.showCompleted {
		return out
	}
	for _, t := range m.tasks {
		if engine.Status(t.Status) == engine.StatusCompleted {
			out = append(out, t)
		}
	}
	return out
}

func (m *boardModel) clampSelection() {
	n := len(m.visibleTasks())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	leftW := sidebarWidth
	if m.width > 0 {
		leftW = max(min(leftW, m.width/2), 20)
	}
	sidebar := lipgloss.NewStyle().Width(leftW).Render(m.renderSidebar())
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", m.renderMain())

	return m.renderHeader() + "\n\n" + body + "\n" + m.renderFooter()
}

func (m boardModel) renderHeader() string {
	if m.dash == nil {
		return ui.Title.Render("tadib | loading…")
	}
	d := m.dash
	return ui.Title.Render("tadib") + ui.Muted.Render(" | ") +
		fmt.Sprintf("%s %d day streak", ui.IconFire, d.Streak) + ui.Muted.Render(" | ") +
		fmt.Sprintf("month %d pts / %d tasks", d.Month.TotalPoints, d.Month.TotalTasks) + ui.Muted.Render(" | ") +
		fmt.Sprintf("productivity %d/100", d.Productivity)
}

func (m boardModel) renderSidebar() string {
	if m.dash == nil {
		return "Achievements\n\nLoading…"
	}
	stats := m.dash.Achievements
	lines := []string{
		ui.PanelTitle.Render(fmt.Sprintf("%s Achievements %d/%d (%d%%)", ui.IconTrophy, stats.Earned, stats.Total, stats.Percentage)),
	}
	for _, cs := range stats.Categories {
		name := cs.Category
		if name == "" {
			name = engine.CategoryName(m.cats, &cs.CategoryID)
		}
		if cs.Next == nil {
			lines = append(lines, fmt.Sprintf("%s %s", padRight(name, 10), ui.Gold.Render("complete")))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			padRight(name, 10),
			m.bar.ViewAs(cs.Next.Progress/100),
			ui.Swatch(cs.Next.Color, cs.Next.Tier)))
	}

	lines = append(lines, "", ui.PanelTitle.Render(ui.IconChart+" Last 7 days"))
	for _, p := range m.dash.Trend {
		lines = append(lines, fmt.Sprintf("%s %4d pts %s", p.Date[5:], p.Points, ui.Muted.Render(fmt.Sprintf("(%d)", p.Tasks))))
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	title := "Tasks"
	if m.showCompleted {
		title = "Tasks (with completed)"
	}
	out := []string{ui.PanelTitle.Render(ui.IconTask + " " + title)}

	visible := m.visibleTasks()
	if len(visible) == 0 {
		out = append(out, ui.Muted.Render("(nothing to do)"))
		return strings.Join(out, "\n")
	}
	for i, t := range visible {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		cat := engine.CategoryName(m.cats, t.CategoryID)
		due := ""
		if t.DueDate != nil {
			due = " " + ui.Muted.Render(ui.IconCal+" "+t.DueDate.Format(engine.DateLayout))
		}
		line := fmt.Sprintf("%s%s %s %s %s%s",
			cursor,
			padRight(t.Title, 28),
			padRight(cat, 12),
			ui.PriorityText(t.Priority),
			ui.Gold.Render(fmt.Sprintf("+%d", t.Points)),
			due)
		if engine.Status(t.Status) == engine.StatusCompleted {
			line = ui.Dim.Render(cursor + padRight(t.Title, 28) + " " + padRight(cat, 12) + " done")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog + "\n" + m.help.View(m.keys)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
