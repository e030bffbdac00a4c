// Package tui implements the interactive verification editor.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/tui/themes"
	"github.com/Veraticus/vatflow/internal/workset"
)

// SaveFunc persists the working set.
type SaveFunc func(ctx context.Context, records []model.Record) error

// ValidateFunc validates the working set.
type ValidateFunc func(ctx context.Context, records []model.Record) ([]model.ValidationResult, error)

// State represents the current state of the editor.
type State int

const (
	StateBrowse State = iota
	StateInput
	StateHelp
)

// column is one displayed field. Columns without a field are read-only.
type column struct {
	title string
	field string
	width int
}

var columns = []column{
	{title: "Date", field: model.FieldDate, width: 10},
	{title: "Trans ID", field: model.FieldTransactionID, width: 12},
	{title: "Account", field: model.FieldAccount, width: 8},
	{title: "Name", field: model.FieldAccountName, width: 12},
	{title: "Reference", field: model.FieldReference, width: 10},
	{title: "Description", field: model.FieldDescription, width: 24},
	{title: "Amount", field: model.FieldAmount, width: 10},
	{title: "VAT", field: model.FieldVAT, width: 9},
	{title: "Flag", field: model.FieldFlag, width: 6},
	{title: "Status", width: 18},
	{title: "Notes", field: model.FieldNotes, width: 20},
}

// Model holds the editor state. The working set itself lives in the
// session; the model only tracks the cursor and pending input.
type Model struct {
	ctx        context.Context
	lastError  error
	session    *workset.Session
	save       SaveFunc
	validate   ValidateFunc
	theme      themes.Theme
	keymap     KeyMap
	help       help.Model
	input      textinput.Model
	status     string
	busy       string // running validate or save; empty when idle
	inputID    string
	inputField string
	cursor     int
	column     int
	pageSize   int
	generation int
	width      int
	height     int
	state      State
	dirty      bool
	saved      bool
	quitting   bool
}

// Option configures the editor.
type Option func(*Model)

// WithSave enables saving from the editor.
func WithSave(fn SaveFunc) Option {
	return func(m *Model) { m.save = fn }
}

// WithValidate enables validation from the editor.
func WithValidate(fn ValidateFunc) Option {
	return func(m *Model) { m.validate = fn }
}

// WithPageSize sets how many rows are shown per page.
func WithPageSize(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// WithTheme overrides the color theme.
func WithTheme(t themes.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// New creates an editor over session.
func New(ctx context.Context, session *workset.Session, opts ...Option) Model {
	input := textinput.New()
	input.CharLimit = 256

	m := Model{
		ctx:      ctx,
		session:  session,
		theme:    themes.Default,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		pageSize: workset.DefaultPageSize,
		width:    120,
		height:   40,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case validatedMsg:
		m.busy = ""
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		if msg.generation != m.generation {
			m.status = "Records changed during validation; validate again"
			return m, nil
		}
		m.session.SetValidation(msg.results)
		m.lastError = nil
		m.status = validationStatus(m.session.ErrorCount())
		return m, nil

	case savedMsg:
		m.busy = ""
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		if msg.generation == m.generation {
			m.dirty = false
		}
		m.saved = true
		m.lastError = nil
		m.status = fmt.Sprintf("Saved %d records", msg.count)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case StateInput:
			return m.updateInput(msg)
		case StateHelp:
			m.state = StateBrowse
			return m, nil
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.lastError = nil
	visible := len(m.session.Visible())

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.state = StateHelp
		m.help.ShowAll = true
	case key.Matches(msg, m.keymap.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keymap.Down):
		m.cursor = min(m.cursor+1, max(visible-1, 0))
	case key.Matches(msg, m.keymap.PageUp):
		m.cursor = max(m.cursor-m.pageSize, 0)
	case key.Matches(msg, m.keymap.PageDown):
		m.cursor = min(m.cursor+m.pageSize, max(visible-1, 0))
	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0
	case key.Matches(msg, m.keymap.End):
		m.cursor = max(visible-1, 0)
	case key.Matches(msg, m.keymap.Left):
		if m.session.Editing() {
			m.column = m.prevEditable(m.column)
		}
	case key.Matches(msg, m.keymap.Right):
		if m.session.Editing() {
			m.column = m.nextEditable(m.column)
		}
	case key.Matches(msg, m.keymap.ToVerify):
		m.setStatus(model.StatusClientToVerify)
	case key.Matches(msg, m.keymap.Verified):
		m.setStatus(model.StatusVerified)
	case key.Matches(msg, m.keymap.NotVATReg):
		m.setStatus(model.StatusNotVATRegistered)
	case key.Matches(msg, m.keymap.CycleStatus):
		if rec, ok := m.current(); ok {
			m.setStatus(nextStatus(rec.Status))
		}
	case key.Matches(msg, m.keymap.EditNotes):
		return m.startInput(model.FieldNotes)
	case key.Matches(msg, m.keymap.ToggleEdit):
		if m.session.ToggleEditMode() {
			m.status = "Edit mode on"
			m.column = m.nextEditable(-1)
		} else {
			m.status = "Edit mode off"
		}
	case key.Matches(msg, m.keymap.EditCell):
		if !m.session.Editing() {
			m.status = "Press e to enter edit mode"
			return m, nil
		}
		return m.startInput(columns[m.column].field)
	case key.Matches(msg, m.keymap.ToggleFlagged):
		if m.session.ToggleFlagged() {
			m.status = "Showing flagged records"
		} else {
			m.status = "Showing all records"
		}
		m.cursor = 0
	case key.Matches(msg, m.keymap.Validate):
		if m.validate == nil {
			m.status = "Validation is not available"
			return m, nil
		}
		if m.Busy() {
			m.status = fmt.Sprintf("Wait for %s to finish", m.busy)
			return m, nil
		}
		m.busy = "validation"
		m.status = "Validating..."
		return m, validateCmd(m.ctx, m.validate, m.session.Records(), m.generation)
	case key.Matches(msg, m.keymap.Save):
		if m.save == nil {
			m.status = "Saving is not available"
			return m, nil
		}
		if m.Busy() {
			m.status = fmt.Sprintf("Wait for %s to finish", m.busy)
			return m, nil
		}
		m.busy = "save"
		m.status = "Saving..."
		return m, saveCmd(m.ctx, m.save, m.session.Records(), m.generation)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel):
		m.state = StateBrowse
		m.input.Blur()
		m.status = "Edit canceled"
		return m, nil
	case key.Matches(msg, m.keymap.Submit):
		m.state = StateBrowse
		m.input.Blur()
		value := m.input.Value()
		var err error
		if m.inputField == model.FieldNotes && !m.session.Editing() {
			err = m.session.SetNotes(m.inputID, value)
		} else {
			err = m.session.SetField(m.inputID, m.inputField, value)
		}
		if err != nil {
			m.lastError = err
			return m, nil
		}
		m.changed()
		m.status = fmt.Sprintf("Updated %s", m.inputField)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startInput(field string) (tea.Model, tea.Cmd) {
	rec, ok := m.current()
	if !ok {
		return m, nil
	}
	m.state = StateInput
	m.inputID = rec.ID
	m.inputField = field
	m.input.Prompt = field + ": "
	m.input.SetValue(fieldValue(rec, field))
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m *Model) setStatus(status model.VerificationStatus) {
	rec, ok := m.current()
	if !ok {
		return
	}
	if err := m.session.SetStatus(rec.ID, status); err != nil {
		m.lastError = err
		return
	}
	m.changed()
	m.status = fmt.Sprintf("%s marked %s", rec.TransactionID, status.Label())
	m.cursor = min(m.cursor, max(len(m.session.Visible())-1, 0))
}

func (m *Model) changed() {
	m.dirty = true
	m.generation++
}

func (m Model) current() (model.Record, bool) {
	visible := m.session.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Record{}, false
	}
	return visible[m.cursor], true
}

func (m Model) nextEditable(from int) int {
	for i := from + 1; i < len(columns); i++ {
		if columns[i].field != "" {
			return i
		}
	}
	return max(from, 0)
}

func (m Model) prevEditable(from int) int {
	for i := from - 1; i >= 0; i-- {
		if columns[i].field != "" {
			return i
		}
	}
	return from
}

// Dirty reports whether the working set has unsaved edits.
func (m Model) Dirty() bool {
	return m.dirty
}

// Busy reports whether a validate or save is still running.
func (m Model) Busy() bool {
	return m.busy != ""
}

// Saved reports whether the working set was saved at least once.
func (m Model) Saved() bool {
	return m.saved
}

func nextStatus(s model.VerificationStatus) model.VerificationStatus {
	statuses := model.Statuses()
	for i, st := range statuses {
		if st == s {
			return statuses[(i+1)%len(statuses)]
		}
	}
	return statuses[0]
}

func fieldValue(rec model.Record, field string) string {
	switch field {
	case model.FieldDate:
		return rec.Date
	case model.FieldTransactionID:
		return rec.TransactionID
	case model.FieldAccount:
		return rec.Account
	case model.FieldAccountName:
		return rec.AccountName
	case model.FieldReference:
		return rec.Reference
	case model.FieldDescription:
		return rec.Description
	case model.FieldAmount:
		return rec.Amount.String()
	case model.FieldVAT:
		return rec.VAT.String()
	case model.FieldFlag:
		return rec.Flag
	case model.FieldNotes:
		return rec.Notes
	default:
		return ""
	}
}

func validationStatus(n int) string {
	if n == 0 {
		return "All records are valid"
	}
	return fmt.Sprintf("%d record(s) have errors", n)
}
