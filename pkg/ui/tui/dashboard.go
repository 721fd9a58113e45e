// Package tui is the optional full-screen scrape dashboard.
//
// The dashboard implements the scraper's progress interface and starts its
// bubbletea program lazily on the first Start call, which happens after the
// login gate is done with the terminal. Log lines written to it before that
// point are passed through to a plain writer.
package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Option configures a Dashboard
type Option func(*Dashboard)

// WithOutput renders to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(d *Dashboard) { d.programOpts = append(d.programOpts, tea.WithOutput(w)) }
}

// WithInput reads keys from r instead of stdin; nil disables input
func WithInput(r io.Reader) Option {
	return func(d *Dashboard) { d.programOpts = append(d.programOpts, tea.WithInput(r)) }
}

// WithAltScreen renders on the alternate screen buffer
func WithAltScreen() Option {
	return func(d *Dashboard) { d.programOpts = append(d.programOpts, tea.WithAltScreen()) }
}

// WithPassthrough sets where log lines go while the dashboard is not running
func WithPassthrough(w io.Writer) Option {
	return func(d *Dashboard) { d.passthrough = w }
}

// WithQuitHandler is called when the user quits from the keyboard
func WithQuitHandler(fn func()) Option {
	return func(d *Dashboard) { d.model.onQuit = fn }
}

// Dashboard drives the bubbletea program
type Dashboard struct {
	mu          sync.Mutex
	model       *Model
	program     *tea.Program
	programOpts []tea.ProgramOption
	passthrough io.Writer
	done        chan struct{}
	err         error
	pending     []byte
}

// New creates a dashboard for the given target label
func New(label string, opts ...Option) *Dashboard {
	d := &Dashboard{
		model:       NewModel(label),
		passthrough: os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the program and shows the post count
func (d *Dashboard) Start(total int) {
	d.mu.Lock()
	if d.program == nil {
		d.model.SetTotal(total)
		d.program = tea.NewProgram(d.model, d.programOpts...)
		d.done = make(chan struct{})
		go d.run(d.program, d.done)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	d.send(StartMsg{Total: total})
}

func (d *Dashboard) run(p *tea.Program, done chan struct{}) {
	_, err := p.Run()
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
	close(done)
}

// PostStored implements the scraper progress interface
func (d *Dashboard) PostStored(index, stored, failed int) {
	d.send(PostStoredMsg{Index: index, Stored: stored, Failed: failed})
}

// PostDropped implements the scraper progress interface
func (d *Dashboard) PostDropped(index int, err error) {
	d.send(PostDroppedMsg{Index: index, Err: err})
}

// Complete renders the final frame and waits for the program to exit
func (d *Dashboard) Complete() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()

	d.send(CompleteMsg{})
	if done != nil {
		<-done
	}
}

// Err is the error the program exited with, if any
func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Model exposes the dashboard state, mostly for tests
func (d *Dashboard) Model() *Model {
	return d.model
}

func (d *Dashboard) send(msg tea.Msg) {
	d.mu.Lock()
	p := d.program
	d.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Write accepts zerolog JSON lines. While the program runs they become log
// panel entries, otherwise they are printed as "LEVEL message".
func (d *Dashboard) Write(b []byte) (int, error) {
	d.mu.Lock()
	d.pending = append(d.pending, b...)
	var lines [][]byte
	for {
		i := bytes.IndexByte(d.pending, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, append([]byte(nil), d.pending[:i]...))
		d.pending = d.pending[i+1:]
	}
	p := d.program
	running := p != nil && !d.finished()
	d.mu.Unlock()

	for _, line := range lines {
		level, message := parseLogLine(line)
		if message == "" {
			continue
		}
		if running {
			p.Send(LogMsg{Level: level, Message: message})
			continue
		}
		if d.passthrough != nil {
			fmt.Fprintf(d.passthrough, "%s %s\n", level, message)
		}
	}
	return len(b), nil
}

// finished reports whether the program goroutine has exited; mu must be held
func (d *Dashboard) finished() bool {
	if d.done == nil {
		return false
	}
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// parseLogLine pulls level and message out of a zerolog JSON line, falling
// back to the raw text
func parseLogLine(line []byte) (level, message string) {
	var entry struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(line, &entry); err != nil || entry.Message == "" {
		return "INFO", strings.TrimSpace(string(line))
	}

	level = strings.ToUpper(entry.Level)
	if level == "WARNING" {
		level = "WARN"
	}
	if level == "" {
		level = "INFO"
	}
	message = entry.Message
	if entry.Error != "" {
		message += ": " + entry.Error
	}
	return level, message
}
