package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/collection"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/overview"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const defaultPageSize = 15

type listState int

const (
	listStateBrowse listState = iota
	listStateSearch
	listStateTimeframe
	listStateForm
)

type listForm int

const (
	listFormTransition listForm = iota
	listFormCreate
	listFormDelete
	listFormExport
)

var sortOrders = []record.SortOrder{
	record.SortNone,
	record.SortDateDesc,
	record.SortDateAsc,
	record.SortAmountDesc,
	record.SortAmountAsc,
}

var sortLabels = map[record.SortOrder]string{
	record.SortNone:       "Default",
	record.SortDateDesc:   "Newest",
	record.SortDateAsc:    "Oldest",
	record.SortAmountDesc: "Amount ↓",
	record.SortAmountAsc:  "Amount ↑",
}

// formBindings is shared by pointer so huh keeps writing into the same
// values while the model is copied between updates.
type formBindings struct {
	status  record.Status
	confirm bool
	path    string
	draft   createDraft
}

// ListModel is one kind's page: KPIs over the whole collection and a
// filtered, paginated table below them.
type ListModel struct {
	CommonModel
	deps Deps
	coll *collection.Collection

	state  listState
	table  table.Model
	search textinput.Model
	picker TimeframePicker

	crit        record.Criteria
	page        int
	pageSize    int
	statusIdx   int
	categoryIdx int
	sortIdx     int
	rangeLabel  string
	view        record.View

	form     *huh.Form
	formKind listForm
	bind     *formBindings
	target   uuid.UUID

	loading bool
	stale   bool
	asOf    time.Time
	status  string
	err     error
}

// NewListModel opens kind. seed, when set, is shown until the first load
// finishes, so the dashboard's copy appears immediately.
func NewListModel(deps Deps, kind record.Kind, seed *overview.Result) ListModel {
	columns := []table.Column{
		{Title: "Reference", Width: 12},
		{Title: counterpartyLabel(kind), Width: 24},
		{Title: "Category", Width: 12},
		{Title: "Status", Width: 18},
		{Title: "Amount", Width: 16},
		{Title: "Issued", Width: 11},
		{Title: "Due", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(defaultPageSize),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search reference, name, company, description"
	search.Width = 50

	m := ListModel{
		deps:       deps,
		coll:       collection.New(kind, deps.Client),
		table:      t,
		search:     search,
		picker:     NewTimeframePicker(),
		crit:       record.Criteria{Category: record.All, Status: record.All},
		page:       1,
		pageSize:   defaultPageSize,
		rangeLabel: TimeframeAll.String(),
		loading:    true,
	}

	if seed != nil && seed.Err == nil {
		m.coll.Set(seed.Records)
		m.stale = seed.Stale
		m.asOf = seed.AsOf
		m.loading = false
	}

	m.refresh()

	return m
}

func (m ListModel) kind() record.Kind { return m.coll.Kind() }

func (m ListModel) Title() string {
	return m.deps.Format.Status(record.Status(m.kind())) + "s"
}

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateSearch:
		return "Enter: apply | Esc: clear"
	case listStateTimeframe:
		return "Enter: select | f: date field | Esc: back"
	case listStateForm:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | /: search | s: status | c: category | d: dates | o: sort | ←/→: page | " +
		"enter: change status | a: add | x: delete | e: export | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		m.loading = false
		if msg.superseded {
			return m, nil
		}

		m.err = msg.err
		if msg.err == nil {
			m.stale = msg.stale
			m.asOf = msg.asOf
		}

		m.refresh()

		return m, nil

	case listMutationMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("%s: %v", msg.text, msg.err))
		}

		m.refresh()

		return m, nil

	case TimeframeSelectedMsg:
		m.crit.Start, m.crit.End = msg.Start, msg.End
		m.crit.DateField = msg.Field
		m.rangeLabel = msg.Label
		m.state = listStateBrowse
		m.page = 1
		m.picker.Reset()
		m.refresh()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.pageSize = max(5, msg.Height-18)
		m.table.SetHeight(m.pageSize)
		m.refresh()

		return m, nil
	}

	switch m.state {
	case listStateSearch:
		return m.updateSearch(msg)
	case listStateTimeframe:
		return m.updateTimeframe(msg)
	case listStateForm:
		return m.updateForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "/":
		m.state = listStateSearch
		m.table.Blur()

		return m, m.search.Focus()
	case "s":
		m.statusIdx = (m.statusIdx + 1) % (len(record.Statuses(m.kind())) + 1)
		m.crit.Status = m.selectedStatus()
		m.page = 1
	case "c":
		cats := m.categories()
		m.categoryIdx = (m.categoryIdx + 1) % (len(cats) + 1)
		m.crit.Category = record.All

		if m.categoryIdx > 0 {
			m.crit.Category = cats[m.categoryIdx-1]
		}

		m.page = 1
	case "o":
		m.sortIdx = (m.sortIdx + 1) % len(sortOrders)
		m.crit.Sort = sortOrders[m.sortIdx]
	case "d":
		m.state = listStateTimeframe
		m.table.Blur()

		return m, nil
	case "right", "l", "n":
		m.page++
	case "left", "h", "p":
		m.page--
	case "enter":
		return m.openTransition()
	case "a":
		return m.openCreate()
	case "x":
		return m.openDelete()
	case "e":
		return m.openExport()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	m.refresh()

	return m, nil
}

func (m ListModel) selectedStatus() string {
	if m.statusIdx == 0 {
		return record.All
	}

	return string(record.Statuses(m.kind())[m.statusIdx-1])
}

// categories lists the distinct categories present in the collection.
func (m ListModel) categories() []string {
	var cats []string

	for _, r := range m.coll.Records() {
		if r.Category != "" && !slices.Contains(cats, r.Category) {
			cats = append(cats, r.Category)
		}
	}

	slices.Sort(cats)

	return cats
}

func (m ListModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.state = listStateBrowse
			m.search.Blur()
			m.table.Focus()
			m.crit.Query = strings.TrimSpace(m.search.Value())
			m.page = 1
			m.refresh()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	// Filter as the user types.
	m.crit.Query = strings.TrimSpace(m.search.Value())
	m.page = 1
	m.refresh()

	return m, cmd
}

func (m ListModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			m.state = listStateBrowse
			m.table.Focus()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ListModel) selected() (*record.Record, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.view.Items) {
		return nil, false
	}

	return m.view.Items[idx], true
}

func (m ListModel) openTransition() (tea.Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok {
		return m, nil
	}

	if m.coll.Pending(r.ID) {
		m.status = "A change to this record is still being saved."
		return m, nil
	}

	next := record.Next(r.Kind, r.Status)
	if len(next) == 0 {
		m.status = fmt.Sprintf("%s is final.", m.deps.Format.Status(r.Status))
		return m, nil
	}

	m.bind = &formBindings{status: next[0]}

	options := make([]huh.Option[record.Status], len(next))
	for i, s := range next {
		options[i] = huh.NewOption(m.deps.Format.Status(s), s)
	}

	m.form = huh.NewForm(huh.NewGroup(
		huh.NewSelect[record.Status]().
			Title(fmt.Sprintf("Move %s from %s to", displayRef(r), m.deps.Format.Status(r.Status))).
			Options(options...).
			Value(&m.bind.status),
	)).WithWidth(45).WithShowHelp(false)

	return m.enterForm(listFormTransition, r.ID)
}

func (m ListModel) openCreate() (tea.Model, tea.Cmd) {
	m.bind = &formBindings{}
	m.form = newCreateForm(m.kind(), &m.bind.draft)

	return m.enterForm(listFormCreate, uuid.Nil)
}

func (m ListModel) openDelete() (tea.Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.bind = &formBindings{}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s?", displayRef(r))).
			Affirmative("Delete").
			Negative("Keep").
			Value(&m.bind.confirm),
	)).WithWidth(45).WithShowHelp(false)

	return m.enterForm(listFormDelete, r.ID)
}

func (m ListModel) openExport() (tea.Model, tea.Cmd) {
	m.bind = &formBindings{path: filepath.Join("exports", export.Filename(m.kind(), export.FormatXLSX, time.Now()))}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Output file").
			Description("The filtered records, sorted as shown. End in .pdf for a report").
			Value(&m.bind.path).
			Validate(required("path")),
	)).WithWidth(50).WithShowHelp(false)

	return m.enterForm(listFormExport, uuid.Nil)
}

func (m ListModel) enterForm(kind listForm, target uuid.UUID) (tea.Model, tea.Cmd) {
	m.state = listStateForm
	m.formKind = kind
	m.target = target
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) closeForm() ListModel {
	m.state = listStateBrowse
	m.form = nil
	m.table.Focus()

	return m
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		return m.closeForm(), nil
	case huh.StateCompleted:
	default:
		return m, cmd
	}

	bind := m.bind
	kind := m.formKind
	target := m.target
	m = m.closeForm()

	switch kind {
	case listFormTransition:
		return m.stageTransition(target, bind.status)
	case listFormCreate:
		req, err := bind.draft.request(m.kind())
		if err != nil {
			m.status = errorStyle.Render(err.Error())
			return m, nil
		}

		return m, m.createCmd(req)
	case listFormDelete:
		if !bind.confirm {
			return m, nil
		}

		return m.stageRemove(target)
	case listFormExport:
		return m, m.exportCmd(bind.path)
	}

	return m, nil
}

// stageTransition shows the change in the table before the request goes out.
func (m ListModel) stageTransition(id uuid.UUID, to record.Status) (ListModel, tea.Cmd) {
	change, err := m.coll.Stage(id, to)
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return m, nil
	}

	m.refresh()

	return m, m.commitCmd(change)
}

func (m ListModel) stageRemove(id uuid.UUID) (ListModel, tea.Cmd) {
	removal, err := m.coll.StageRemove(id)
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return m, nil
	}

	m.refresh()

	return m, m.removeCmd(removal)
}

// refresh re-derives the visible page and KPIs from the collection.
func (m *ListModel) refresh() {
	m.view = m.coll.View(m.crit, m.page, m.pageSize)
	m.page = m.view.Page

	rows := make([]table.Row, 0, len(m.view.Items))
	for _, r := range m.view.Items {
		status := m.deps.Format.Status(r.Status)
		if m.coll.Pending(r.ID) {
			status += " …"
		}

		rows = append(rows, table.Row{
			displayRef(r),
			r.Counterparty,
			r.Category,
			status,
			m.deps.Format.Money(r.Amount),
			m.deps.Format.Date(r.IssueDate),
			m.deps.Format.DatePtr(r.DueDate),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func displayRef(r *record.Record) string {
	if r.Reference != "" {
		return r.Reference
	}

	return r.ID.String()[:8]
}

func (m ListModel) View() string {
	if m.loading && m.coll.Len() == 0 {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Loading %s...", m.Title()))
	}

	if m.state == listStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	statusLabel := "All"
	if m.crit.Status != record.All {
		statusLabel = m.deps.Format.Status(record.Status(m.crit.Status))
	}

	categoryLabel := "All"
	if m.crit.Category != record.All {
		categoryLabel = m.crit.Category
	}

	header := fmt.Sprintf(
		"[s] Status: %s | [c] Category: %s | [d] Dates: %s | [o] Sort: %s",
		activeStyle(statusLabel),
		activeStyle(categoryLabel),
		activeStyle(m.rangeLabel),
		activeStyle(sortLabels[m.crit.Sort]),
	)

	var search string
	if m.state == listStateSearch || m.crit.Query != "" {
		search = m.search.View()
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	footer := faintStyle.Render(fmt.Sprintf("Page %d of %d · %d of %d records",
		m.view.Page, m.view.TotalPages, m.view.TotalCount, m.coll.Len()))

	parts := []string{kpiCards(m.deps, m.coll.KPIs()), ""}

	if m.stale {
		parts = append(parts, staleStyle.Render(fmt.Sprintf("Offline: showing records cached %s", m.asOf.Format("2006-01-02 15:04"))))
	}

	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	parts = append(parts, header)
	if search != "" {
		parts = append(parts, search)
	}

	parts = append(parts, tableView, footer)

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.state == listStateForm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = content + "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

var cardStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1).
	MarginRight(1)

func kpiCards(deps Deps, kpis []record.KPI) string {
	cards := make([]string, len(kpis))
	for i, k := range kpis {
		cards[i] = cardStyle.Render(faintStyle.Render(k.Label) + "\n" + lipgloss.NewStyle().Bold(true).Render(deps.Format.KPI(k)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// Messages

type listLoadedMsg struct {
	stale      bool
	asOf       time.Time
	superseded bool
	err        error
}

type listMutationMsg struct {
	text string
	err  error
}

// loadCmd goes through the overview service so an unreachable backend falls
// back to the cached copy. The collection drops superseded responses.
func (m ListModel) loadCmd() tea.Cmd {
	coll := m.coll
	ov := m.deps.Overview

	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		var res *overview.Result

		err := coll.LoadFrom(ctx, func(ctx context.Context) ([]*record.Record, error) {
			var err error

			res, err = ov.Load(ctx, coll.Kind())
			if err != nil {
				return nil, err
			}

			return res.Records, nil
		})

		switch {
		case errors.Is(err, collection.ErrStale):
			return listLoadedMsg{superseded: true}
		case err != nil:
			return listLoadedMsg{err: err}
		}

		return listLoadedMsg{stale: res.Stale, asOf: res.AsOf}
	}
}

// commitCmd settles a change that is already visible in the table.
func (m ListModel) commitCmd(change *collection.Change) tea.Cmd {
	label := m.deps.Format.Status(change.Status())

	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		updated, err := change.Commit(ctx)
		if err != nil {
			return listMutationMsg{text: "Status change reverted", err: err}
		}

		return listMutationMsg{text: successStyle.Render(fmt.Sprintf("%s is now %s.", displayRef(updated), label))}
	}
}

func (m ListModel) createCmd(req api.CreateRequest) tea.Cmd {
	coll := m.coll

	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		created, err := coll.Add(ctx, req)
		if err != nil {
			return listMutationMsg{text: "Could not create record", err: err}
		}

		return listMutationMsg{text: successStyle.Render(fmt.Sprintf("Created %s.", displayRef(created)))}
	}
}

func (m ListModel) removeCmd(removal *collection.Removal) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		if err := removal.Commit(ctx); err != nil {
			return listMutationMsg{text: "Delete reverted", err: err}
		}

		return listMutationMsg{text: "Deleted."}
	}
}

// exportCmd writes the current filter and sort to a local file, a PDF report
// when path ends in .pdf and a workbook otherwise. It also works from a
// cached copy.
func (m ListModel) exportCmd(path string) tea.Cmd {
	kind := m.kind()
	recs := record.Filter(m.coll.Records(), m.crit)
	exports := m.deps.Exports

	return func() tea.Msg {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return listMutationMsg{text: "Export failed", err: err}
		}

		f, err := os.Create(path)
		if err != nil {
			return listMutationMsg{text: "Export failed", err: err}
		}
		defer f.Close()

		if err := exports.Write(kind, export.FormatOf(path), recs, f); err != nil {
			return listMutationMsg{text: "Export failed", err: err}
		}

		return listMutationMsg{text: successStyle.Render(fmt.Sprintf("Exported %d records to %s.", len(recs), path))}
	}
}
