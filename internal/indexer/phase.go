package indexer

// Phase is a tagging run's position in its state machine:
// Idle → Scanning → Extracting → PersistingPhotos → PersistingTags →
// Done | Cancelled | Failed.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseScanning         Phase = "scanning"
	PhaseExtracting       Phase = "extracting"
	PhasePersistingPhotos Phase = "persisting_photos"
	PhasePersistingTags   Phase = "persisting_tags"
	PhaseDone             Phase = "done"
	PhaseCancelled        Phase = "cancelled"
	PhaseFailed           Phase = "failed"
)

// Description is the human-readable status line shown while in the phase.
func (p Phase) Description() string {
	switch p {
	case PhaseIdle:
		return "Ready"
	case PhaseScanning:
		return "Scanning for images..."
	case PhaseExtracting:
		return "Extracting metadata..."
	case PhasePersistingPhotos:
		return "Creating database entries..."
	case PhasePersistingTags:
		return "Creating tags..."
	case PhaseDone:
		return "Complete"
	case PhaseCancelled:
		return "Cancelled"
	case PhaseFailed:
		return "Failed"
	default:
		return string(p)
	}
}

// Terminal reports whether the run has finished.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseCancelled || p == PhaseFailed
}

// Active reports whether the run is between Scanning and PersistingTags.
func (p Phase) Active() bool {
	return p != PhaseIdle && !p.Terminal()
}
