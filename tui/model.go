// Package tui renders a live terminal dashboard over the status API.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/docsmith/internal/scheduler"
	"github.com/hochfrequenz/docsmith/web/api"
)

// Snapshot is one refresh of dashboard data
type Snapshot struct {
	Stats   scheduler.Stats
	Running []api.JobResponse
	Recent  []api.JobResponse
}

// Provider fetches dashboard data; the CLI wires an HTTP-backed one
type Provider interface {
	Fetch() (Snapshot, error)
}

// Model is the TUI application model
type Model struct {
	provider Provider

	snapshot Snapshot
	fetchErr error

	width       int
	height      int
	lastRefresh time.Time
}

// NewModel creates a dashboard model over the given provider
func NewModel(provider Provider) Model {
	return Model{provider: provider}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchCmd(m.provider), tickCmd())
}

// TickMsg triggers a refresh
type TickMsg time.Time

// SnapshotMsg carries freshly fetched dashboard data
type SnapshotMsg struct {
	Snapshot Snapshot
	Err      error
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func fetchCmd(p Provider) tea.Cmd {
	return func() tea.Msg {
		snap, err := p.Fetch()
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}
