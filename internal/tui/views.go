package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/workset"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	page := m.session.Page(m.cursor/m.pageSize+1, m.pageSize)
	b.WriteString(m.renderTable(page))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("Page %d of %d · %d records", page.Number, page.Pages, page.Total)))
	b.WriteString("\n")

	if m.state == StateInput {
		b.WriteString(m.theme.BorderedBox.Render(m.input.View()))
		b.WriteString("\n")
	}

	switch {
	case m.lastError != nil:
		b.WriteString(m.theme.StatusError.Render("Error: " + m.lastError.Error()))
	case m.status != "":
		b.WriteString(m.theme.StatusInfo.Render(m.status))
	}
	b.WriteString("\n")

	if m.state == StateHelp {
		b.WriteString(m.help.FullHelpView(m.keymap.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keymap.ShortHelp()))
	}
	return b.String()
}

func (m Model) renderHeader() string {
	name := m.session.Filename()
	if name == "" {
		name = "Working set"
	}
	parts := []string{m.theme.Title.UnsetMargins().Render(name)}
	if m.session.Editing() {
		parts = append(parts, m.theme.StatusWarning.Render("[EDIT]"))
	}
	if m.session.FlaggedOnly() {
		parts = append(parts, m.theme.StatusInfo.Render("[FLAGGED]"))
	}
	if m.session.Validated() {
		if n := m.session.ErrorCount(); n > 0 {
			parts = append(parts, m.theme.StatusError.Render(fmt.Sprintf("%d invalid", n)))
		} else {
			parts = append(parts, m.theme.StatusSuccess.Render("valid"))
		}
	}
	if m.dirty {
		parts = append(parts, m.theme.StatusPending.Render("unsaved"))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderTable(page workset.Page) string {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = pad(c.title, c.width)
	}
	lines := []string{m.theme.Header.Render("  " + strings.Join(header, " "))}

	if len(page.Rows) == 0 {
		lines = append(lines, m.theme.StatusPending.Render("  No records"))
		return strings.Join(lines, "\n")
	}

	offset := (page.Number - 1) * page.Size
	for i, row := range page.Rows {
		selected := offset+i == m.cursor
		lines = append(lines, m.renderRow(row, selected))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(row workset.Row, selected bool) string {
	rec := row.Record
	cells := make([]string, len(columns))
	for i, c := range columns {
		value := rec.StatusLabel
		if c.field != "" {
			value = fieldValue(rec, c.field)
		}
		cell := pad(value, c.width)
		if selected && m.session.Editing() && i == m.column {
			cell = m.theme.SelectedCell.Render(cell)
		}
		cells[i] = cell
	}

	marker := "  "
	if row.Result != nil && row.Result.HasError {
		marker = m.theme.StatusError.Render("! ")
	}
	line := strings.Join(cells, " ")

	var style lipgloss.Style
	switch {
	case selected:
		style = m.theme.Selected
	case rec.Status == model.StatusClientToVerify:
		style = m.theme.RowToVerify
	case rec.Status == model.StatusNotVATRegistered:
		style = m.theme.RowNotVATReg
	default:
		style = m.theme.Normal
	}

	out := marker + style.Render(line)
	if selected && row.Result != nil && row.Result.HasError {
		out += "\n    " + m.theme.StatusError.Render(strings.Join(row.Result.ErrorFields, "; "))
	}
	return out
}

// pad fits s into exactly width runes.
func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
