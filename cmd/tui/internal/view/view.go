package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/client"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/overview"
)

const apiTimeout = 10 * time.Second

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// Deps are the services shared by every screen.
type Deps struct {
	Client   *client.Client
	Overview *overview.Service
	Format   *format.Formatter
	Exports  *export.Service
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// apiCtx returns a context with the standard timeout for backend calls.
func apiCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	staleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}
