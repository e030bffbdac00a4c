package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/Veraticus/vatflow/internal/model"
)

// KeyMap defines the editor's keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Verification
	ToVerify    key.Binding
	Verified    key.Binding
	NotVATReg   key.Binding
	CycleStatus key.Binding
	EditNotes   key.Binding

	// Edit mode
	ToggleEdit key.Binding
	EditCell   key.Binding

	// Views and actions
	ToggleFlagged key.Binding
	Validate      key.Binding
	Save          key.Binding

	// Input
	Submit key.Binding
	Cancel key.Binding

	// Application
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
}

// bind creates a binding whose help key is the first of keys unless label
// is given.
func bind(label, desc string, keys ...string) key.Binding {
	if label == "" {
		label = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// statusKey binds a status code to its own digit.
func statusKey(s model.VerificationStatus) key.Binding {
	return bind("", strings.ToLower(s.Label()), string(s))
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       bind("↑/k", "up", "k", "up"),
		Down:     bind("↓/j", "down", "j", "down"),
		Left:     bind("←/h", "previous column", "h", "left"),
		Right:    bind("→/l", "next column", "l", "right"),
		PageUp:   bind("PgUp/Ctrl+B", "previous page", "pgup", "ctrl+b"),
		PageDown: bind("PgDn/Ctrl+F", "next page", "pgdown", "ctrl+f"),
		Home:     bind("Home/g", "first record", "home", "g"),
		End:      bind("End/G", "last record", "end", "G"),

		ToVerify:    statusKey(model.StatusClientToVerify),
		Verified:    statusKey(model.StatusVerified),
		NotVATReg:   statusKey(model.StatusNotVATRegistered),
		CycleStatus: bind("Space", "cycle status", " "),
		EditNotes:   bind("", "edit notes", "n"),

		ToggleEdit: bind("", "toggle edit mode", "e"),
		EditCell:   bind("Enter", "edit cell", "enter"),

		ToggleFlagged: bind("", "flagged only", "f"),
		Validate:      bind("", "validate", "v"),
		Save:          bind("s", "save", "s", "ctrl+s"),

		Submit: bind("Enter", "apply", "enter"),
		Cancel: bind("Esc", "cancel", "esc"),

		Quit:      bind("q/Esc", "quit", "q", "esc"),
		ForceQuit: bind("Ctrl+C", "force quit", "ctrl+c"),
		Help:      bind("", "help", "?"),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.CycleStatus, k.EditNotes, k.Validate, k.Save, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.PageUp, k.PageDown, k.Home, k.End},
		{k.ToVerify, k.Verified, k.NotVATReg, k.CycleStatus},
		{k.EditNotes, k.ToggleEdit, k.EditCell, k.ToggleFlagged},
		{k.Validate, k.Save, k.Help, k.Quit},
	}
}
