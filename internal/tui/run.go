package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/vatflow/internal/workset"
)

// Outcome reports how an editor session ended.
type Outcome struct {
	Dirty bool
	Saved bool
}

// Run opens the editor on the terminal and blocks until the user quits or
// ctx is canceled. Edits are applied to session in place.
func Run(ctx context.Context, session *workset.Session, opts ...Option) (Outcome, error) {
	p := tea.NewProgram(New(ctx, session, opts...), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("running editor: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Outcome{}, fmt.Errorf("unexpected editor model %T", final)
	}
	return Outcome{Dirty: m.Dirty(), Saved: m.Saved()}, nil
}
