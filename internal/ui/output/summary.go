package output

import (
	"fmt"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/fake/internal/ui/style"
)

// Summary tallies finished tasks for the line printed when a run ends.
type Summary struct {
	Done, Failed, Skipped int

	first, last time.Time
}

// Observe widens the run's wall-clock span to include t.
func (s *Summary) Observe(t time.Time) {
	if s.first.IsZero() || t.Before(s.first) {
		s.first = t
	}
	if t.After(s.last) {
		s.last = t
	}
}

// Total is the number of tasks that finished one way or another.
func (s *Summary) Total() int {
	return s.Done + s.Failed + s.Skipped
}

// Fprint writes "✓ 3 done, 0 failed, 0 skipped in 1.2s" to out.
// Nothing is written when no task finished.
func (s *Summary) Fprint(out *termenv.Output) {
	if s.Total() == 0 {
		return
	}

	icon := out.String(style.Check).Foreground(termenv.ANSIGreen)
	if s.Failed > 0 || s.Skipped > 0 {
		icon = out.String(style.Cross).Foreground(termenv.ANSIRed)
	}
	_, _ = fmt.Fprintf(out, "%s %d done, %d failed, %d skipped in %s\n",
		icon, s.Done, s.Failed, s.Skipped, FormatDuration(s.last.Sub(s.first)))
}

// FormatDuration rounds d for display: milliseconds below a second, hundredths above.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
