package indexer

import (
	"sync"
	"time"

	"autotagger/internal/database"
)

// Summary is the outcome of one tagging run. It is delivered exactly once per
// run through Observer.OnFinished.
type Summary struct {
	Folder string `json:"folder"`

	// Photos is the number of photo rows written this run.
	Photos int `json:"photos"`

	// Tags is the number of distinct tags resolved this run; NewTags counts
	// the ones that did not exist before.
	Tags    int `json:"tags"`
	NewTags int `json:"newTags"`

	// Errors counts per-file failures plus one for a fatal error.
	Errors        int           `json:"errors"`
	ErrorsByPhase map[Phase]int `json:"errorsByPhase,omitempty"`

	// WithLocation and WithoutLocation split the extracted files by whether
	// a GPS location was resolved.
	WithLocation    int `json:"withLocation"`
	WithoutLocation int `json:"withoutLocation"`

	// Library holds the row totals after the run, when the store was reachable.
	Library database.Counts `json:"library"`

	Phase    Phase         `json:"phase"`
	Duration time.Duration `json:"duration"`

	// Err is the fatal error, if any.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Observer receives run notifications. Callbacks are invoked from the
// goroutine driving the run and must not block for long.
type Observer interface {
	OnProgress(completed, total int)
	OnPhaseChanged(phase Phase)
	OnLogLine(line string)
	OnFinished(summary Summary)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnProgress(int, int) {}
func (NopObserver) OnPhaseChanged(Phase) {}
func (NopObserver) OnLogLine(string) {}
func (NopObserver) OnFinished(Summary) {}

// MultiObserver fans notifications out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnProgress(completed, total int) {
	for _, o := range m {
		o.OnProgress(completed, total)
	}
}

func (m MultiObserver) OnPhaseChanged(phase Phase) {
	for _, o := range m {
		o.OnPhaseChanged(phase)
	}
}

func (m MultiObserver) OnLogLine(line string) {
	for _, o := range m {
		o.OnLogLine(line)
	}
}

func (m MultiObserver) OnFinished(summary Summary) {
	for _, o := range m {
		o.OnFinished(summary)
	}
}

// EventKind identifies the notification carried by an Event.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventPhase    EventKind = "phase"
	EventLog      EventKind = "log"
	EventFinished EventKind = "finished"
)

// Event is one notification delivered by a ChannelObserver. Only the fields
// matching Kind are set.
type Event struct {
	Kind      EventKind
	Completed int
	Total     int
	Phase     Phase
	Line      string
	Summary   *Summary
}

// ChannelObserver delivers notifications as typed events on a channel. The
// channel is closed after the finished event.
//
// Intermediate progress events are dropped when the buffer is full. The
// final (total, total) event of a phase, and phase, log and finished events,
// always block until received.
type ChannelObserver struct {
	events chan Event
	once   sync.Once
}

// NewChannelObserver returns an observer whose channel holds buffer events.
func NewChannelObserver(buffer int) *ChannelObserver {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelObserver{events: make(chan Event, buffer)}
}

// Events returns the receive side of the event channel.
func (c *ChannelObserver) Events() <-chan Event {
	return c.events
}

func (c *ChannelObserver) OnProgress(completed, total int) {
	ev := Event{Kind: EventProgress, Completed: completed, Total: total}
	if completed >= total {
		c.events <- ev
		return
	}
	select {
	case c.events <- ev:
	default:
	}
}

func (c *ChannelObserver) OnPhaseChanged(phase Phase) {
	c.events <- Event{Kind: EventPhase, Phase: phase}
}

func (c *ChannelObserver) OnLogLine(line string) {
	c.events <- Event{Kind: EventLog, Line: line}
}

func (c *ChannelObserver) OnFinished(summary Summary) {
	c.once.Do(func() {
		c.events <- Event{Kind: EventFinished, Summary: &summary}
		close(c.events)
	})
}
