package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const timeRound = 10 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	queuedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	failedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	statusBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("255"))
)

// View renders the dashboard
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("docsmith"))
	b.WriteString("\n\n")

	if m.fetchErr != nil {
		b.WriteString(warningStyle.Render(fmt.Sprintf("fetch error: %v", m.fetchErr)))
		b.WriteString("\n\n")
	}

	b.WriteString(sectionStyle.Render(m.renderStats()))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(m.renderRunning()))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(m.renderRecent()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

func (m Model) renderStats() string {
	s := m.snapshot.Stats
	var b strings.Builder
	b.WriteString("Stats\n")
	b.WriteString(fmt.Sprintf("submitted %d  queued %d  running %d\n",
		s.TotalSubmitted, s.Queued, s.Running))
	b.WriteString(fmt.Sprintf("completed %d  failed %d  cancelled %d\n",
		s.Completed, s.Failed, s.Cancelled))
	b.WriteString(fmt.Sprintf("avg %s  success %.1f%%  throughput %.1f/h",
		s.AvgExecutionTime.Round(timeRound), s.SuccessRate, s.ThroughputPerHour))
	return b.String()
}

func (m Model) renderRunning() string {
	var b strings.Builder
	b.WriteString("Running\n")
	if len(m.snapshot.Running) == 0 {
		b.WriteString(queuedStyle.Render("(none)"))
		return b.String()
	}
	for _, j := range m.snapshot.Running {
		b.WriteString(runningStyle.Render(fmt.Sprintf("%s  %s", shortID(j.ID), j.RepoID)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderRecent() string {
	var b strings.Builder
	b.WriteString("Recent\n")
	if len(m.snapshot.Recent) == 0 {
		b.WriteString(queuedStyle.Render("(none)"))
		return b.String()
	}
	for _, j := range m.snapshot.Recent {
		line := fmt.Sprintf("%s  %-9s %s", shortID(j.ID), j.Status, j.RepoID)
		switch j.Status {
		case "completed":
			b.WriteString(runningStyle.Render(line))
		case "failed":
			b.WriteString(failedStyle.Render(line))
		default:
			b.WriteString(queuedStyle.Render(line))
		}
		if j.Reason != "" {
			b.WriteString(queuedStyle.Render("  " + j.Reason))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStatusBar() string {
	refreshed := "never"
	if !m.lastRefresh.IsZero() {
		refreshed = m.lastRefresh.Format("15:04:05")
	}
	return statusBarStyle.Render(fmt.Sprintf(" q quit  r refresh  |  updated %s ", refreshed))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
