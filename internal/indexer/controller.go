package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"autotagger/internal/logging"
	"autotagger/internal/metrics"
)

// Maximum number of run log lines kept for status snapshots
const logTailSize = 50

var (
	// ErrRunInProgress is returned by Start while a run is active.
	ErrRunInProgress = errors.New("a tagging run is already in progress")

	// ErrInvalidFolder is returned by Start when the folder does not exist or
	// is not a directory.
	ErrInvalidFolder = errors.New("folder does not exist or is not a directory")
)

// Status is a point-in-time snapshot of the controller.
type Status struct {
	Running     bool      `json:"running"`
	Folder      string    `json:"folder,omitempty"`
	Phase       Phase     `json:"phase"`
	Description string    `json:"description"`
	Completed   int       `json:"completed"`
	Total       int       `json:"total"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	Log         []string  `json:"log"`
	Summary     *Summary  `json:"summary,omitempty"`
}

// Controller runs at most one pipeline at a time in the background and
// keeps its latest status for polling clients.
type Controller struct {
	pipeline  *Pipeline
	observers []Observer

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	folder    string
	phase     Phase
	completed int
	total     int
	startedAt time.Time
	logTail   []string
	summary   *Summary
}

// NewController creates a controller for pipeline. Every run also notifies
// observers.
func NewController(pipeline *Pipeline, observers ...Observer) *Controller {
	return &Controller{
		pipeline:  pipeline,
		observers: observers,
		phase:     PhaseIdle,
	}
}

// Start begins tagging folder in the background.
func (c *Controller) Start(folder string) error {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFolder, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidFolder, abs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrRunInProgress
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.running = true
	c.cancel = cancel
	c.done = done
	c.folder = abs
	c.phase = PhaseIdle
	c.completed = 0
	c.total = 0
	c.startedAt = time.Now()
	c.logTail = nil
	c.summary = nil

	obs := MultiObserver(append([]Observer{c}, c.observers...))

	go func() {
		defer close(done)
		defer cancel()
		c.pipeline.Run(ctx, abs, obs)
	}()

	logging.Info("Started tagging run for %s", abs)
	return nil
}

// Cancel requests cancellation of the active run. It reports whether a run
// was active.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return false
	}
	logging.Info("Cancelling tagging run for %s", c.folder)
	c.cancel()
	return true
}

// Wait blocks until the active run, if any, finishes or ctx is done, and
// returns the latest summary.
func (c *Controller) Wait(ctx context.Context) (*Summary, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary, nil
}

// Status returns a snapshot of the current or last run.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		Running:     c.running,
		Folder:      c.folder,
		Phase:       c.phase,
		Description: c.phase.Description(),
		Completed:   c.completed,
		Total:       c.total,
		StartedAt:   c.startedAt,
		Log:         append([]string{}, c.logTail...),
	}
	if c.summary != nil {
		summary := *c.summary
		s.Summary = &summary
	}
	return s
}

// GetStats implements metrics.StatsProvider from the last finished run.
func (c *Controller) GetStats() metrics.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := metrics.Stats{Folder: c.folder}
	if c.summary != nil {
		stats.DBPath = filepath.Join(c.summary.Folder, c.pipeline.dbName)
		stats.Photos = c.summary.Library.Photos
		stats.Tags = c.summary.Library.Tags
		stats.Links = c.summary.Library.Links
	}
	return stats
}

func (c *Controller) OnProgress(completed, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = completed
	c.total = total
}

func (c *Controller) OnPhaseChanged(phase Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = phase
	c.completed = 0
	c.total = 0
}

func (c *Controller) OnLogLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logTail = append(c.logTail, line)
	if len(c.logTail) > logTailSize {
		c.logTail = c.logTail[len(c.logTail)-logTailSize:]
	}
}

func (c *Controller) OnFinished(summary Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = &summary
	c.phase = summary.Phase
	c.running = false
}
