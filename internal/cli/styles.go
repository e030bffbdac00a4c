// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/vatflow/internal/tui/themes"
)

// Colors shared with the verification editor.
var (
	PrimaryColor = themes.Ledger.Brand
	AccentColor  = themes.Ledger.Highlight
	SuccessColor = themes.Ledger.Good
	WarningColor = themes.Ledger.Caution
	ErrorColor   = themes.Ledger.Bad
	InfoColor    = themes.Ledger.Note
	SubtleColor  = themes.Ledger.Faint
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	// TitleStyle is used for section titles.
	TitleStyle = fg(AccentColor).Bold(true).MarginBottom(1)

	SuccessStyle = fg(SuccessColor)
	WarningStyle = fg(WarningColor)
	ErrorStyle   = fg(ErrorColor)
	InfoStyle    = fg(InfoColor)
	SubtleStyle  = fg(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// PromptStyle is used for confirmation questions.
	PromptStyle = fg(AccentColor).Bold(true)

	// BarStyle renders activity chart bars.
	BarStyle = fg(AccentColor)

	// BoxStyle frames dashboard panels.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
	LedgerIcon  = "🧾"
)

func badge(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string { return badge(SuccessStyle, SuccessIcon, message) }

// FormatError formats an error message with icon.
func FormatError(message string) string { return badge(ErrorStyle, ErrorIcon, message) }

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string { return badge(WarningStyle, WarningIcon, message) }

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string { return badge(InfoStyle, InfoIcon, message) }

// FormatTitle formats a section title.
func FormatTitle(title string) string { return badge(TitleStyle, LedgerIcon, title) }

// FormatPrompt formats a question awaiting an answer on the same line.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content under title in a rounded box.
func RenderBox(title, content string) string {
	head := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, head, content))
}
