// Package progress reports two-level progress: an outer count of files and
// an inner count of time frames within the current file. Reporting is best
// effort and never feeds back into the computation.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Reporter receives progress updates
type Reporter interface {
	// Outer reports the file-level position, with an optional message
	Outer(done, total int, message string)

	// Inner reports the time-frame position within the current file
	Inner(done, total int)
}

// Discard is a Reporter that drops everything
type Discard struct{}

func (Discard) Outer(int, int, string) {}
func (Discard) Inner(int, int)         {}

// Console prints a progress bar to a writer
type Console struct {
	out   io.Writer
	width int

	mu        sync.Mutex
	startTime time.Time
	file      string
}

// NewConsole returns a console reporter writing to w, or stdout if w is nil
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{out: w, width: 40}
}

// Outer prints the file position and restarts the inner timer
func (c *Console) Outer(done, total int, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.file = fmt.Sprintf("%d/%d", done, total)
	if message != "" {
		fmt.Fprintf(c.out, "[%s] %s\n", c.file, message)
	}
}

// Inner redraws the time-frame bar
func (c *Console) Inner(done, total int) {
	if total <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	percentage := float64(done) / float64(total) * 100
	numBars := int(percentage / 100 * float64(c.width))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < c.width; i++ {
		switch {
		case i < numBars:
			bar.WriteString("█")
		case i == numBars:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	bar.WriteString("]")

	timing := ""
	if done > 0 && !c.startTime.IsZero() {
		elapsed := time.Since(c.startTime)
		remaining := 0.0
		if done < total {
			remaining = elapsed.Seconds() / float64(done) * float64(total-done)
		}
		timing = fmt.Sprintf(" [%.1fs elapsed | %s remaining]", elapsed.Seconds(), formatSeconds(remaining))
	}

	fmt.Fprintf(c.out, "\r%s %.1f%% (%d/%d)%s", bar.String(), percentage, done, total, timing)
	if done >= total {
		fmt.Fprintln(c.out)
	}
}

func formatSeconds(s float64) string {
	switch {
	case s < 60:
		return fmt.Sprintf("%.1fs", s)
	case s < 3600:
		return fmt.Sprintf("%.1fm", s/60)
	default:
		return fmt.Sprintf("%.1fh", s/3600)
	}
}
