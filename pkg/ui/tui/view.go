package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 80

// View renders the dashboard
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{
		m.renderHeader(width),
		m.renderProgress(width),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderStats((width-2)/2),
			m.renderRecent(width-(width-2)/2-2),
		),
		m.renderLogs(width),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("q quit • ? help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader(width int) string {
	status := m.spinner.View() + " scraping"
	if m.finished {
		status = "done"
	}
	left := headerStyle.Render("THREADSCRAPER")
	right := dimStyle.Render(m.label + "  " + status)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderProgress(width int) string {
	bar := m.bar
	bar.Width = width - 20
	if bar.Width < 10 {
		bar.Width = 10
	}

	counts := valueStyle.Render(fmt.Sprintf("%d/%d", m.Processed(), m.total))
	return panelStyle.Width(width - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, bar.ViewAs(m.Fraction()), "  ", counts),
	)
}

func (m *Model) renderStats(width int) string {
	row := func(label string, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-15s", label)) + value
	}

	failed := valueStyle.Render(fmt.Sprint(m.imagesFailed))
	if m.imagesFailed > 0 {
		failed = errorStyle.Render(fmt.Sprint(m.imagesFailed))
	}
	dropped := valueStyle.Render(fmt.Sprint(m.dropped))
	if m.dropped > 0 {
		dropped = warningStyle.Render(fmt.Sprint(m.dropped))
	}

	lines := []string{
		titleStyle.Render("Run"),
		row("Elapsed", valueStyle.Render(formatDuration(m.now().Sub(m.startedAt)))),
		row("ETA", valueStyle.Render(formatDuration(m.ETA()))),
		row("Images stored", successStyle.Render(fmt.Sprint(m.imagesStored))),
		row("Images failed", failed),
		row("Posts dropped", dropped),
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderRecent(width int) string {
	lines := []string{titleStyle.Render("Recent posts")}

	recent := m.RecentPosts(5)
	if len(recent) == 0 {
		lines = append(lines, dimStyle.Render("waiting for the first post..."))
	}
	for _, p := range recent {
		var text string
		switch p.State {
		case PostDropped:
			text = fmt.Sprintf("✗ #%d dropped", p.Index)
		case PostPartial:
			text = fmt.Sprintf("! #%d %d stored, %d failed", p.Index, p.Stored, p.Failed)
		default:
			text = fmt.Sprintf("✓ #%d %d images", p.Index, p.Stored)
		}
		lines = append(lines, stateStyle(p.State).Render(text))
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderLogs(width int) string {
	start := len(m.logMessages) - 8
	if start < 0 {
		start = 0
	}

	maxMsgLen := width - 24
	if maxMsgLen < 10 {
		maxMsgLen = 10
	}

	lines := []string{titleStyle.Render("Log")}
	for _, l := range m.logMessages[start:] {
		msg := l.Message
		if r := []rune(msg); len(r) > maxMsgLen {
			msg = string(r[:maxMsgLen-3]) + "..."
		}
		level := lipgloss.NewStyle().Foreground(levelColor(l.Level)).Bold(true).Render(fmt.Sprintf("%-5s", l.Level))
		lines = append(lines, fmt.Sprintf("%s %s %s", logTimestampStyle.Render(l.Time.Format("15:04:05")), level, msg))
	}
	if len(lines) == 1 {
		lines = append(lines, dimStyle.Render("no log lines yet"))
	}
	return panelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelp() string {
	return helpStyle.Render(strings.Join([]string{
		"q, ctrl+c   stop the run; collected posts are still exported",
		"ctrl+l      clear the log panel",
		"?           toggle this help",
		"",
		successStyle.Render("✓") + " stored   " + warningStyle.Render("!") + " some images failed   " + errorStyle.Render("✗") + " dropped",
	}, "\n"))
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mins, s)
	}
	return fmt.Sprintf("%02d:%02d", mins, s)
}
