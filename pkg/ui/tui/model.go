package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// PostState is how a post ended up after storage
type PostState int

const (
	PostStored PostState = iota
	PostPartial
	PostDropped
)

// PostItem is one processed post as shown in the recent list
type PostItem struct {
	Index  int
	Stored int
	Failed int
	State  PostState
	Err    error
	At     time.Time
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
}

// Model is the dashboard state. Only the bubbletea loop mutates it.
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	label        string
	total        int
	posts        []PostItem
	imagesStored int
	imagesFailed int
	dropped      int
	startedAt    time.Time
	finished     bool

	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	onQuit func()
	now    func() time.Time
}

// NewModel creates a dashboard model for the given target label
func NewModel(label string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return &Model{
		spinner:        s,
		bar:            progress.New(progress.WithDefaultGradient()),
		label:          label,
		startedAt:      time.Now(),
		maxLogMessages: 50,
		now:            time.Now,
	}
}

// Init starts the spinner and the refresh tick
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// SetTotal sets the number of posts that will be processed
func (m *Model) SetTotal(total int) {
	m.total = total
	m.startedAt = m.now()
}

// RecordStored adds a post whose images went through the sink
func (m *Model) RecordStored(index, stored, failed int) {
	state := PostStored
	if failed > 0 {
		state = PostPartial
	}
	m.imagesStored += stored
	m.imagesFailed += failed
	m.posts = append(m.posts, PostItem{Index: index, Stored: stored, Failed: failed, State: state, At: m.now()})
}

// RecordDropped adds a post that could not be extracted
func (m *Model) RecordDropped(index int, err error) {
	m.dropped++
	m.posts = append(m.posts, PostItem{Index: index, State: PostDropped, Err: err, At: m.now()})
}

// AddLogMessage appends a log line, keeping the last maxLogMessages
func (m *Model) AddLogMessage(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{Time: m.now(), Level: level, Message: message})
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Processed is the number of posts stored or dropped so far
func (m *Model) Processed() int {
	return len(m.posts)
}

// Fraction is the share of posts processed, between 0 and 1
func (m *Model) Fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	f := float64(m.Processed()) / float64(m.total)
	if f > 1 {
		f = 1
	}
	return f
}

// ETA extrapolates the time left from the average time per post
func (m *Model) ETA() time.Duration {
	done := m.Processed()
	if done == 0 || done >= m.total {
		return 0
	}
	perPost := m.now().Sub(m.startedAt) / time.Duration(done)
	return perPost * time.Duration(m.total-done)
}

// RecentPosts returns up to n of the latest posts, newest last
func (m *Model) RecentPosts(n int) []PostItem {
	start := len(m.posts) - n
	if start < 0 {
		start = 0
	}
	return m.posts[start:]
}

// Finished reports whether the run completed
func (m *Model) Finished() bool {
	return m.finished
}
