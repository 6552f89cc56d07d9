package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateKindSelect importState = iota
	importStateFormatSelect
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

var importFormats = []importer.Format{
	importer.FormatLedger,
	importer.FormatStandard,
	importer.FormatXLSX,
}

type ImportModel struct {
	CommonModel
	deps Deps

	state      importState
	filePicker filepicker.Model

	kindCursor   int
	formatCursor int

	newParams    []api.CreateRequest
	conflicts    []api.ImportConflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(deps Deps) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		deps:       deps,
		filePicker: fp,
		selected:   make(map[int]bool),
	}
}

func (m ImportModel) kind() record.Kind { return record.Kinds[m.kindCursor] }

func (m ImportModel) format() importer.Format { return importFormats[m.formatCursor] }

func (m ImportModel) Title() string { return "Import Records" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | ↑/↓: move | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateKindSelect:
			return m.updateKindSelect(msg)
		case importStateFormatSelect:
			return m.updateFormatSelect(msg)
		case importStateConflicts:
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		if msg.err != nil && !errors.Is(msg.err, record.ErrConflict) {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.resp.Conflicts) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Imported %d records.", len(msg.resp.Imported))

			return m, nil
		}

		m.newParams = msg.resp.New
		m.conflicts = msg.resp.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		delegate := conflictDelegate{selected: &m.selected, deps: m.deps}
		m.conflictList = list.New(items, delegate, 90, 20)
		m.conflictList.Title = fmt.Sprintf("%d new, %d already exist. Select duplicates to import anyway", len(m.newParams), len(m.conflicts))
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d records.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Uploading %s...", filepath.Base(path))

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFormatSelect:
		m.state = importStateKindSelect
		return m, nil
	case importStateFilePick:
		m.state = importStateFormatSelect
		return m, nil
	case importStateResult, importStateConflicts:
		m.state = importStateKindSelect
		m.err = nil
		m.status = ""
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func moveCursor(cursor, n int, msg tea.KeyMsg) int {
	switch msg.String() {
	case "up", "k":
		return max(0, cursor-1)
	case "down", "j":
		return min(n-1, cursor+1)
	}

	return cursor
}

func (m ImportModel) updateKindSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.state = importStateFormatSelect
		return m, nil
	}

	m.kindCursor = moveCursor(m.kindCursor, len(record.Kinds), msg)

	return m, nil
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	m.formatCursor = moveCursor(m.formatCursor, len(importFormats), msg)

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateKindSelect:
		labels := make([]string, len(record.Kinds))
		for i, k := range record.Kinds {
			labels[i] = m.deps.Format.Status(record.Status(k)) + "s"
		}

		return choiceList("Import into:", labels, m.kindCursor)
	case importStateFormatSelect:
		labels := make([]string, len(importFormats))
		for i, f := range importFormats {
			labels[i] = string(f)
		}

		return choiceList("File format:", labels, m.formatCursor)
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select %s file for %ss:\n\n%s", m.format(), m.kind(), m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		style := successStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

func choiceList(title string, labels []string, cursor int) string {
	s := title + "\n\n"

	for i, l := range labels {
		c := " "
		if i == cursor {
			c = ">"
		}

		s += fmt.Sprintf("%s %s\n", c, l)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

// Messages

type importResultMsg struct {
	resp *api.ImportResponse
	err  error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	c := m.deps.Client
	kind, format := m.kind(), m.format()

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		resp, err := c.Import(ctx, kind, string(format), filepath.Base(path), f)
		if resp == nil {
			resp = &api.ImportResponse{}
		}

		return importResultMsg{resp: resp, err: err}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	c := m.deps.Client
	kind := m.kind()
	params := append([]api.CreateRequest(nil), m.newParams...)

	for i, cf := range m.conflicts {
		if m.selected[i] {
			params = append(params, cf.Incoming)
		}
	}

	return func() tea.Msg {
		if len(params) == 0 {
			return confirmResultMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		recs, err := c.ConfirmImport(ctx, kind, params)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(recs)}
	}
}

// Conflict list item

type conflictItem struct {
	conflict api.ImportConflict
	index    int
}

func (i conflictItem) Title() string       { return i.conflict.Incoming.Reference }
func (i conflictItem) Description() string { return i.conflict.Incoming.Counterparty }
func (i conflictItem) FilterValue() string { return i.conflict.Incoming.Reference }

// Conflict list delegate

type conflictDelegate struct {
	selected *map[int]bool
	deps     Deps
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%s%s %-12s %s  %s  %s",
		cursor, checkbox,
		incoming.Reference,
		d.deps.Format.Date(incoming.IssueDate),
		d.deps.Format.Money(incoming.Amount),
		incoming.Counterparty,
	)

	line2 := faintStyle.Render(fmt.Sprintf("      Existing: %s  %s  %s [%s]",
		d.deps.Format.Date(existing.IssueDate),
		d.deps.Format.Money(existing.Amount),
		existing.Counterparty,
		d.deps.Format.Status(existing.Status),
	))

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
