package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StartMsg carries the number of posts found
type StartMsg struct {
	Total int
}

// PostStoredMsg is sent when a post's images have been handled
type PostStoredMsg struct {
	Index  int
	Stored int
	Failed int
}

// PostDroppedMsg is sent when a post could not be extracted
type PostDroppedMsg struct {
	Index int
	Err   error
}

// CompleteMsg ends the dashboard after the final frame
type CompleteMsg struct{}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg refreshes elapsed time and ETA
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.finished {
			return m, nil
		}
		return m, tickCmd()

	case StartMsg:
		m.SetTotal(msg.Total)
		return m, nil

	case PostStoredMsg:
		m.RecordStored(msg.Index, msg.Stored, msg.Failed)
		return m, nil

	case PostDroppedMsg:
		m.RecordDropped(msg.Index, msg.Err)
		m.AddLogMessage("WARN", "post dropped: "+errString(msg.Err))
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil

	case CompleteMsg:
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

// tickCmd schedules the next refresh
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
