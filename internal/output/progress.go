package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar tracks a fixed number of steps, such as the relations of a
// materialization run.
// Example: [=========>          ]  3/7 salary_summary
type ProgressBar struct {
	total       int
	current     int
	description string
	width       int
	mu          sync.Mutex
	writer      io.Writer
}

// NewProgress creates a progress bar writing to stderr.
func NewProgress(total int, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		description: description,
		width:       30,
		writer:      os.Stderr,
	}
}

// SetWriter sets the output writer (useful for testing).
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Step advances the bar by one and replaces its description.
func (p *ProgressBar) Step(description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < p.total {
		p.current++
	}
	p.description = description
	p.render()
}

// Current returns the number of completed steps.
func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish ends the bar's line on a terminal.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writerIsTTY(p.writer) {
		fmt.Fprintln(p.writer)
	}
}

// render draws the bar (must be called with lock held). A terminal gets
// one line redrawn in place; anything else gets one line per step.
func (p *ProgressBar) render() {
	filled := 0
	if p.total > 0 {
		filled = p.current * p.width / p.total
	}

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	line := fmt.Sprintf("%s %2d/%d %s", bar.String(), p.current, p.total, p.description)
	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(p.writer, line)
}

// Spinner displays an animated spinner with a message and elapsed time.
// Example: |  Loading dataset (3s elapsed)
type Spinner struct {
	message   string
	running   bool
	chars     []string
	mu        sync.Mutex
	writer    io.Writer
	ticker    *time.Ticker
	done      chan struct{}
	startTime time.Time
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
		writer:  os.Stderr,
		done:    make(chan struct{}),
	}
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. On a non-TTY writer the message is printed
// once instead.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.startTime = time.Now()

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)
	go func() {
		idx := 0
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				elapsed := int(time.Since(s.startTime).Seconds())
				fmt.Fprintf(s.writer, "\r%s  %s (%ds elapsed)", s.chars[idx], s.message, elapsed)
				idx = (idx + 1) % len(s.chars)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if writerIsTTY(s.writer) {
		fmt.Fprint(s.writer, "\r\033[K")
	}
}

// StopWithMessage stops the spinner and prints a final message.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}
