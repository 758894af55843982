// Package spinner draws a one-line progress indicator for long training runs.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// DefaultInterval is the redraw period used by Start.
const DefaultInterval = 80 * time.Millisecond

// Spinner redraws "<frame> <message>" on a single line until stopped.
type Spinner struct {
	w        io.Writer
	interval time.Duration

	mu      sync.Mutex
	message string
	width   int

	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start displays an animated spinner with message on w.
func Start(w io.Writer, message string) *Spinner {
	return StartEvery(w, message, DefaultInterval)
}

// StartEvery is Start with a custom redraw interval.
func StartEvery(w io.Writer, message string, interval time.Duration) *Spinner {
	s := &Spinner{
		w:        w,
		interval: interval,
		message:  message,
		done:     make(chan struct{}),
		cleared:  make(chan struct{}),
	}
	go s.loop()
	return s
}

// Update replaces the message shown from the next frame on.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the spinner and clears its line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width)) //nolint:errcheck
			s.mu.Unlock()
			close(s.cleared)
			return
		case <-ticker.C:
			s.mu.Lock()
			line := frames[i%len(frames)] + " " + s.message
			// pad over the previous, possibly longer, line
			width := runewidth.StringWidth(line)
			pad := ""
			if s.width > width {
				pad = strings.Repeat(" ", s.width-width)
			}
			if width > s.width {
				s.width = width
			}
			fmt.Fprintf(s.w, "\r%s%s", line, pad) //nolint:errcheck
			s.mu.Unlock()
			i++
		}
	}
}
