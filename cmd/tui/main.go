package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/backoffice/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/backoffice/internal/cache"
	"github.com/MrJamesThe3rd/backoffice/internal/client"
	"github.com/MrJamesThe3rd/backoffice/internal/config"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/overview"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type screen int

const (
	screenMenu screen = iota
	screenDashboard
	screenList
	screenImport
)

type model struct {
	deps view.Deps
	name string

	current screen
	width   int
	height  int

	dashboard view.DashboardModel
	list      view.ListModel
	imports   view.ImportModel
}

func initialModel(ctx context.Context) (model, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	formatter, err := cfg.Formatter()
	if err != nil {
		slog.Error("invalid display settings", "error", err)
		os.Exit(1)
	}

	api := client.New(cfg.API.BaseURL, cfg.API.Token, client.WithTimeout(cfg.API.Timeout))

	// Without a cache the pages still work, just not offline.
	var store overview.Store

	cleanup := func() {}

	if path, err := cfg.CachePath(); err != nil {
		slog.Warn("no cache directory, offline fallback disabled", "error", err)
	} else if c, err := cache.Open(ctx, path); err != nil {
		slog.Warn("failed to open cache, offline fallback disabled", "path", path, "error", err)
	} else {
		store = c
		cleanup = func() { _ = c.Close() }
	}

	deps := view.Deps{
		Client:   api,
		Overview: overview.NewService(api, store),
		Format:   formatter,
		Exports:  export.NewService(formatter),
	}

	return model{
		deps:    deps,
		name:    cfg.App.Name,
		current: screenMenu,
		imports: view.NewImportModel(deps),
	}, cleanup
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) openKind(kind record.Kind, seed *overview.Result) (tea.Model, tea.Cmd) {
	m.current = screenList
	m.list = view.NewListModel(m.deps, kind, seed)

	if m.height > 0 {
		next, _ := m.list.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.list = next.(view.ListModel)
	}

	return m, m.list.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == screenMenu {
			switch s := msg.String(); s {
			case "q":
				return m, tea.Quit
			case "0":
				m.current = screenDashboard
				m.dashboard = view.NewDashboardModel(m.deps)

				return m, m.dashboard.Init()
			case "i":
				m.current = screenImport
				m.imports = view.NewImportModel(m.deps)

				return m, m.imports.Init()
			default:
				if len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(record.Kinds) {
					return m.openKind(record.Kinds[s[0]-'1'], nil)
				}
			}

			return m, nil
		}
	case view.OpenKindMsg:
		return m.openKind(msg.Kind, msg.Seed)
	case view.BackMsg:
		m.current = screenMenu
		return m, nil
	}

	switch m.current {
	case screenDashboard:
		var next tea.Model
		next, cmd = m.dashboard.Update(msg)
		m.dashboard = next.(view.DashboardModel)
	case screenList:
		var next tea.Model
		next, cmd = m.list.Update(msg)
		m.list = next.(view.ListModel)
	case screenImport:
		var next tea.Model
		next, cmd = m.imports.Update(msg)
		m.imports = next.(view.ImportModel)
	}

	return m, cmd
}

var helpStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(1)

func (m model) page() view.View {
	switch m.current {
	case screenDashboard:
		return m.dashboard
	case screenList:
		return m.list
	case screenImport:
		return m.imports
	}

	return nil
}

func (m model) View() string {
	p := m.page()
	if p == nil {
		var b strings.Builder

		fmt.Fprintf(&b, "%s\n\n0. Dashboard\n", m.name)

		for i, k := range record.Kinds {
			fmt.Fprintf(&b, "%d. %ss\n", i+1, m.deps.Format.Status(record.Status(k)))
		}

		b.WriteString("i. Import\n\nq. Quit")

		return lipgloss.NewStyle().Padding(2).Render(b.String())
	}

	return p.View() + "\n" + helpStyle.Render(p.ShortHelp())
}

func main() {
	ctx := context.Background()

	// The screen belongs to bubbletea; slog goes through the standard logger.
	if f, err := tea.LogToFile(filepath.Join(os.TempDir(), "backoffice-tui.log"), "tui"); err == nil {
		defer f.Close()
	}

	m, cleanup := initialModel(ctx)
	defer cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
