package indexer

import (
	"testing"
	"time"
)

func TestPhaseDescriptions(t *testing.T) {
	tests := []struct {
		phase    Phase
		want     string
		terminal bool
		active   bool
	}{
		{PhaseIdle, "Ready", false, false},
		{PhaseScanning, "Scanning for images...", false, true},
		{PhaseExtracting, "Extracting metadata...", false, true},
		{PhasePersistingPhotos, "Creating database entries...", false, true},
		{PhasePersistingTags, "Creating tags...", false, true},
		{PhaseDone, "Complete", true, false},
		{PhaseCancelled, "Cancelled", true, false},
		{PhaseFailed, "Failed", true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			if got := tt.phase.Description(); got != tt.want {
				t.Errorf("Expected description %q, got %q", tt.want, got)
			}
			if got := tt.phase.Terminal(); got != tt.terminal {
				t.Errorf("Expected Terminal()=%v, got %v", tt.terminal, got)
			}
			if got := tt.phase.Active(); got != tt.active {
				t.Errorf("Expected Active()=%v, got %v", tt.active, got)
			}
		})
	}
}

func TestMultiObserver(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	m := MultiObserver{a, b, NopObserver{}}

	m.OnPhaseChanged(PhaseScanning)
	m.OnProgress(1, 2)
	m.OnLogLine("hello")
	m.OnFinished(Summary{Photos: 3})

	for i, o := range []*recordingObserver{a, b} {
		if len(o.phases) != 1 || o.phases[0] != PhaseScanning {
			t.Errorf("observer %d: Expected phase scanning, got %v", i, o.phases)
		}
		if o.progressCalls != 1 {
			t.Errorf("observer %d: Expected 1 progress call, got %d", i, o.progressCalls)
		}
		if len(o.lines) != 1 || o.lines[0] != "hello" {
			t.Errorf("observer %d: Expected log line hello, got %v", i, o.lines)
		}
		if len(o.finished) != 1 || o.finished[0].Photos != 3 {
			t.Errorf("observer %d: Expected one summary with 3 photos, got %v", i, o.finished)
		}
	}
}

func TestChannelObserver(t *testing.T) {
	c := NewChannelObserver(8)

	c.OnPhaseChanged(PhaseExtracting)
	c.OnProgress(1, 4)
	c.OnLogLine("Found 4 image files.")
	c.OnFinished(Summary{Photos: 4, Tags: 2})
	// A second finish is ignored instead of panicking on the closed channel
	c.OnFinished(Summary{Photos: 99})

	var events []Event
	for ev := range c.Events() {
		events = append(events, ev)
	}

	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}
	if events[0].Kind != EventPhase || events[0].Phase != PhaseExtracting {
		t.Errorf("Expected phase event, got %+v", events[0])
	}
	if events[1].Kind != EventProgress || events[1].Completed != 1 || events[1].Total != 4 {
		t.Errorf("Expected progress 1/4, got %+v", events[1])
	}
	if events[2].Kind != EventLog || events[2].Line != "Found 4 image files." {
		t.Errorf("Expected log event, got %+v", events[2])
	}
	if events[3].Kind != EventFinished || events[3].Summary == nil || events[3].Summary.Photos != 4 {
		t.Errorf("Expected finished event with 4 photos, got %+v", events[3])
	}
}

func TestChannelObserverDropsProgressWhenFull(t *testing.T) {
	c := NewChannelObserver(1)

	c.OnProgress(1, 3)
	c.OnProgress(2, 3) // dropped, buffer full

	ev := <-c.Events()
	if ev.Kind != EventProgress || ev.Completed != 1 {
		t.Errorf("Expected first progress event, got %+v", ev)
	}

	select {
	case ev := <-c.Events():
		t.Errorf("Expected no buffered event, got %+v", ev)
	default:
	}
}

func TestChannelObserverFinalProgressBlocks(t *testing.T) {
	c := NewChannelObserver(1)

	c.OnProgress(1, 3)
	c.OnProgress(2, 3) // dropped, buffer full

	sent := make(chan struct{})
	go func() {
		c.OnProgress(3, 3)
		close(sent)
	}()

	first := <-c.Events()
	if first.Completed != 1 {
		t.Errorf("Expected progress 1/3 first, got %+v", first)
	}

	select {
	case last := <-c.Events():
		if last.Kind != EventProgress || last.Completed != 3 || last.Total != 3 {
			t.Errorf("Expected final progress 3/3, got %+v", last)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Final progress event was not delivered")
	}
	<-sent
}
