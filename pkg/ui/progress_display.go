package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay is the single-line per-post progress shown during a scrape
type ProgressDisplay struct {
	mu           sync.Mutex
	out          io.Writer
	label        string
	total        int
	processed    int
	imagesStored int
	imagesFailed int
	dropped      int
	startTime    time.Time
	isDebug      bool
	now          func() time.Time
}

// NewProgressDisplay creates a display writing to stdout
func NewProgressDisplay(label string, debug bool) *ProgressDisplay {
	return NewProgressDisplayTo(os.Stdout, label, debug)
}

// NewProgressDisplayTo creates a display writing to out
func NewProgressDisplayTo(out io.Writer, label string, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:       out,
		label:     label,
		startTime: time.Now(),
		isDebug:   debug,
		now:       time.Now,
	}
}

// Start sets the number of posts that will be processed
func (p *ProgressDisplay) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.startTime = p.now()
	if p.isDebug {
		fmt.Fprintf(p.out, "%s Found %d posts\n", Magenta("→"), total)
	}
}

// PostStored records a post whose images went through the sink
func (p *ProgressDisplay) PostStored(index, stored, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	p.imagesStored += stored
	p.imagesFailed += failed

	if p.isDebug {
		line := fmt.Sprintf("%s post %d • %d images", Green("✓"), index, stored)
		if failed > 0 {
			line += " • " + Red(fmt.Sprintf("%d failed", failed))
		}
		fmt.Fprintln(p.out, line)
		return
	}
	p.printProgress()
}

// PostDropped records a post that could not be extracted
func (p *ProgressDisplay) PostDropped(index int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	p.dropped++

	if p.isDebug {
		fmt.Fprintf(p.out, "%s post %d dropped: %v\n", Red("✗"), index, err)
		return
	}
	p.printProgress()
}

// printProgress redraws the progress line
func (p *ProgressDisplay) printProgress() {
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), p.line())
}

// line builds the progress line without the carriage returns
func (p *ProgressDisplay) line() string {
	const barWidth = 20
	filled := 0
	if p.total > 0 {
		filled = p.processed * barWidth / p.total
		if filled > barWidth {
			filled = barWidth
		}
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d posts • %d images • %s",
		Cyan(p.label),
		bar,
		p.processed,
		p.total,
		p.imagesStored,
		p.calculateETA(),
	)
	if p.imagesFailed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", p.imagesFailed))
	}
	if p.dropped > 0 {
		line += " • " + Yellow(fmt.Sprintf("%d dropped", p.dropped))
	}
	return line
}

// Complete prints the closing summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.startTime)

	fmt.Fprintf(p.out, "\n\n%s Processed %d posts from %s\n",
		Green("✓"),
		p.processed,
		p.label,
	)
	fmt.Fprintf(p.out, "  %s %d images stored in %s\n",
		Dim("•"),
		p.imagesStored,
		formatDuration(elapsed),
	)
	if p.imagesFailed > 0 {
		fmt.Fprintf(p.out, "  %s %d images failed\n", Dim("•"), p.imagesFailed)
	}
	if p.dropped > 0 {
		fmt.Fprintf(p.out, "  %s %d posts dropped\n", Dim("•"), p.dropped)
	}
}

// calculateETA estimates time remaining
func (p *ProgressDisplay) calculateETA() string {
	if p.processed == 0 {
		return "calculating..."
	}
	remaining := p.total - p.processed
	if remaining <= 0 {
		return "done"
	}

	perPost := p.now().Sub(p.startTime) / time.Duration(p.processed)
	return formatDuration(perPost * time.Duration(remaining))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
