package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"autotagger/internal/indexer"

	"golang.org/x/term"
)

const (
	maxBarWidth = 40
	minBarWidth = 10
)

// progressPrinter renders pipeline notifications on a terminal. On a TTY
// progress is redrawn in place; otherwise a line is printed every 10%.
type progressPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	tty      bool
	barWidth int
	lastStep int
	drawn    bool
}

func newProgressPrinter(out io.Writer, tty bool, width int) *progressPrinter {
	bar := width - 30
	if bar > maxBarWidth {
		bar = maxBarWidth
	}
	if bar < minBarWidth {
		bar = minBarWidth
	}
	return &progressPrinter{out: out, tty: tty, barWidth: bar, lastStep: -1}
}

// newStdoutProgress detects whether stdout is a terminal.
func newStdoutProgress() *progressPrinter {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return newProgressPrinter(os.Stdout, false, 0)
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 80
	}
	return newProgressPrinter(os.Stdout, true, width)
}

func (p *progressPrinter) OnProgress(completed, total int) {
	if total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	percent := completed * 100 / total

	if p.tty {
		filled := completed * p.barWidth / total
		fmt.Fprintf(p.out, "\r\033[K  [%s%s] %3d%% (%d/%d)",
			strings.Repeat("#", filled), strings.Repeat(".", p.barWidth-filled), percent, completed, total)
		p.drawn = true
		return
	}

	step := percent / 10
	if step == p.lastStep && completed != total {
		return
	}
	p.lastStep = step
	fmt.Fprintf(p.out, "  %3d%% (%d/%d)\n", percent, completed, total)
}

func (p *progressPrinter) OnPhaseChanged(phase indexer.Phase) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clearLine()
	p.lastStep = -1
	if phase.Active() {
		fmt.Fprintf(p.out, "==> %s\n", phase.Description())
	}
}

func (p *progressPrinter) OnLogLine(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clearLine()
	fmt.Fprintln(p.out, line)
}

func (p *progressPrinter) OnFinished(summary indexer.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clearLine()
	printSummary(p.out, summary)
}

// clearLine ends an in-place progress line. Callers hold p.mu.
func (p *progressPrinter) clearLine() {
	if p.tty && p.drawn {
		fmt.Fprint(p.out, "\r\033[K")
		p.drawn = false
	}
}

func printSummary(w io.Writer, s indexer.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s in %v\n", s.Phase.Description(), s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Photos:        %d\n", s.Photos)
	fmt.Fprintf(w, "  Tags:          %d (%d new)\n", s.Tags, s.NewTags)
	fmt.Fprintf(w, "  With location: %d\n", s.WithLocation)
	fmt.Fprintf(w, "  Errors:        %d\n", s.Errors)
	for _, phase := range []indexer.Phase{indexer.PhaseExtracting, indexer.PhasePersistingPhotos, indexer.PhasePersistingTags} {
		if n := s.ErrorsByPhase[phase]; n > 0 {
			fmt.Fprintf(w, "    %-18s %d\n", phase, n)
		}
	}
	if s.Library.Photos > 0 {
		fmt.Fprintf(w, "  Library:       %d photos, %d tags, %d links\n", s.Library.Photos, s.Library.Tags, s.Library.Links)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "  Error:         %s\n", s.Error)
	}
}
