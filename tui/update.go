package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, fetchCmd(m.provider)
		}
		return m, nil

	case TickMsg:
		return m, tea.Batch(fetchCmd(m.provider), tickCmd())

	case SnapshotMsg:
		if msg.Err != nil {
			m.fetchErr = msg.Err
			return m, nil
		}
		m.fetchErr = nil
		m.snapshot = msg.Snapshot
		m.lastRefresh = time.Now()
		return m, nil
	}

	return m, nil
}
