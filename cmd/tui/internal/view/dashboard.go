package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/overview"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// OpenKindMsg asks the root model to open a kind's list page. Seed is the
// dashboard's copy of the collection, if it has one.
type OpenKindMsg struct {
	Kind record.Kind
	Seed *overview.Result
}

type dashboardLoadedMsg struct {
	results []*overview.Result
}

// DashboardModel shows the KPI set of every kind at once.
type DashboardModel struct {
	CommonModel
	deps Deps

	results []*overview.Result
	cursor  int
	loading bool
}

func NewDashboardModel(deps Deps) DashboardModel {
	return DashboardModel{deps: deps, loading: true}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "Esc: back | ↑/↓: move | Enter: open | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	ov := m.deps.Overview

	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		return dashboardLoadedMsg{results: ov.Dashboard(ctx)}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.results = msg.results
		m.loading = false
		m.cursor = min(m.cursor, max(0, len(m.results)-1))

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.Init()
		case "up", "k":
			m.cursor = max(0, m.cursor-1)
		case "down", "j":
			m.cursor = min(len(m.results)-1, m.cursor+1)
		case "enter":
			if m.cursor < len(m.results) {
				res := m.results[m.cursor]
				return m, func() tea.Msg { return OpenKindMsg{Kind: res.Kind, Seed: res} }
			}
		}
	}

	return m, nil
}

var (
	rowStyle      = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(1).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("205"))
)

func (m DashboardModel) View() string {
	if m.loading && m.results == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	var b strings.Builder

	for i, res := range m.results {
		title := lipgloss.NewStyle().Bold(true).Render(m.deps.Format.Status(record.Status(res.Kind)) + "s")

		switch {
		case res.Err != nil:
			title += "  " + errorStyle.Render("unavailable")
		case res.Stale:
			title += "  " + staleStyle.Render(fmt.Sprintf("cached %s", res.AsOf.Format("2006-01-02 15:04")))
		}

		block := lipgloss.JoinVertical(lipgloss.Left, title, kpiCards(m.deps, res.KPIs))

		style := rowStyle
		if i == m.cursor {
			style = selectedStyle
		}

		b.WriteString(style.Render(block))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(faintStyle.Render("Refreshing..."))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}
