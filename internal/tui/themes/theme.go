// Package themes holds the color schemes of the verification editor.
package themes

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a Theme is built from.
type Palette struct {
	Brand     lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Faint     lipgloss.Color
	Line      lipgloss.Color
	Ink       lipgloss.Color
	Good      lipgloss.Color
	Caution   lipgloss.Color
	Bad       lipgloss.Color
	Note      lipgloss.Color

	// ToVerify and NotVATReg tint rows the way the PDF report shades them.
	ToVerify  lipgloss.Color
	NotVATReg lipgloss.Color
}

// Theme is the set of styles the editor renders with.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Header        lipgloss.Style
	Selected      lipgloss.Style
	SelectedCell  lipgloss.Style
	RowToVerify   lipgloss.Style
	RowNotVATReg  lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	BorderedBox   lipgloss.Style
}

// Ledger is the dark palette in the report's navy and sky blue.
var Ledger = Palette{
	Brand:     lipgloss.Color("#214866"),
	Highlight: lipgloss.Color("#5fa8d3"),
	Text:      lipgloss.Color("#fafafa"),
	Dim:       lipgloss.Color("#a3a3a3"),
	Faint:     lipgloss.Color("#737373"),
	Line:      lipgloss.Color("#404040"),
	Ink:       lipgloss.Color("#1a1a1a"),
	Good:      lipgloss.Color("#10b981"),
	Caution:   lipgloss.Color("#f59e0b"),
	Bad:       lipgloss.Color("#ef4444"),
	Note:      lipgloss.Color("#3b82f6"),
	ToVerify:  lipgloss.Color("#ffc8c8"),
	NotVATReg: lipgloss.Color("#ffffc8"),
}

// Default is the theme used when none is chosen.
var Default = New(Ledger)

// New derives every style from p.
func New(p Palette) Theme {
	bold := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return Theme{
		Title:    bold(p.Text).MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Foreground(p.Dim),
		Normal:   lipgloss.NewStyle().Foreground(p.Text),
		Header:   bold(lipgloss.Color("#ffffff")).Background(p.Brand),
		Selected: bold(p.Text).Background(p.Line),
		SelectedCell: lipgloss.NewStyle().
			Background(p.Highlight).
			Foreground(p.Ink),
		RowToVerify:  lipgloss.NewStyle().Foreground(p.ToVerify),
		RowNotVATReg: lipgloss.NewStyle().Foreground(p.NotVATReg),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.Line).
			Padding(0, 1),
		StatusSuccess: bold(p.Good),
		StatusWarning: bold(p.Caution),
		StatusError:   bold(p.Bad),
		StatusInfo:    bold(p.Note),
		StatusPending: lipgloss.NewStyle().Foreground(p.Faint).Italic(true),
	}
}
