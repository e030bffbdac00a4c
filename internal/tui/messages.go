package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/vatflow/internal/model"
)

// validatedMsg carries validation results for the records as they were
// at generation.
type validatedMsg struct {
	err        error
	results    []model.ValidationResult
	generation int
}

type savedMsg struct {
	err        error
	count      int
	generation int
}

func validateCmd(ctx context.Context, fn ValidateFunc, records []model.Record, generation int) tea.Cmd {
	return func() tea.Msg {
		results, err := fn(ctx, records)
		return validatedMsg{results: results, err: err, generation: generation}
	}
}

func saveCmd(ctx context.Context, fn SaveFunc, records []model.Record, generation int) tea.Cmd {
	return func() tea.Msg {
		err := fn(ctx, records)
		return savedMsg{count: len(records), err: err, generation: generation}
	}
}
