package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/notsao/tadibsync/internal/engine"
)

func RunBoard(ctx context.Context, svc *engine.Service, tenant string, out io.Writer) error {
	m := newBoardModel(ctx, svc, tenant)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
