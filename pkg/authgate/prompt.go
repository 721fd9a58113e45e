package authgate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Prompter reads one line of operator input
type Prompter interface {
	Read(prompt string, hidden bool) (string, error)
}

// Restorer is implemented by prompters that change terminal modes
type Restorer interface {
	Restore() error
}

// Ask runs p.Read in the background and waits at most timeout for it.
// A timeout, a cancelled ctx or a read error all yield "".
// An abandoned read keeps its goroutine until the operator presses enter.
// When a hidden read is abandoned the prompter's terminal is restored so
// echo comes back.
func Ask(ctx context.Context, p Prompter, prompt string, timeout time.Duration, hidden bool) string {
	if p == nil {
		return ""
	}

	answer := make(chan string, 1)
	go func() {
		v, err := p.Read(prompt, hidden)
		if err != nil {
			v = ""
		}
		answer <- strings.TrimSpace(v)
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case v := <-answer:
		return v
	case <-expired:
	case <-ctx.Done():
	}
	if r, ok := p.(Restorer); ok && hidden {
		_ = r.Restore()
	}
	return ""
}

// TerminalPrompter prompts on out and reads from in. Hidden input uses the
// terminal's no-echo mode when in is a terminal.
type TerminalPrompter struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
	// state is the terminal mode found at construction
	state *term.State
}

// NewTerminalPrompter reads stdin and writes prompts to stderr
func NewTerminalPrompter() *TerminalPrompter {
	fd := int(os.Stdin.Fd())
	t := &TerminalPrompter{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stderr,
		fd:     fd,
		isTerm: term.IsTerminal(fd),
	}
	if t.isTerm {
		if st, err := term.GetState(fd); err == nil {
			t.state = st
		}
	}
	return t
}

// Restore puts the terminal back into the mode it had when the prompter was
// created. It does not wait for a pending Read and is a no-op off a terminal.
func (t *TerminalPrompter) Restore() error {
	if t.state == nil {
		return nil
	}
	return term.Restore(t.fd, t.state)
}

// NewReaderPrompter reads lines from r, echoing prompts to out
func NewReaderPrompter(r io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(r), out: out, fd: -1}
}

func (t *TerminalPrompter) Read(prompt string, hidden bool) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprint(t.out, prompt)

	if hidden && t.isTerm {
		b, err := term.ReadPassword(t.fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
