package services

import (
	"sync"

	"github.com/google/uuid"
)

// Capability names one AI enrichment action on an idea.
type Capability string

const (
	CapabilityKeywords Capability = "keywords"
	CapabilityTitles   Capability = "titles"
	CapabilityScript   Capability = "script"
	CapabilityExpand   Capability = "expand"
	CapabilityValidate Capability = "validate"
)

// InFlightTracker records which enrichment is currently running per idea.
// Begin refuses a second concurrent start of the same idea+capability, which
// is the double-trigger guard the persisted model cannot provide.
type InFlightTracker struct {
	mu sync.Mutex
	m  map[uuid.UUID]map[Capability]bool
}

func NewInFlightTracker() *InFlightTracker {
	return &InFlightTracker{m: make(map[uuid.UUID]map[Capability]bool)}
}

func (t *InFlightTracker) Begin(id uuid.UUID, cap Capability) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	caps, ok := t.m[id]
	if !ok {
		caps = make(map[Capability]bool)
		t.m[id] = caps
	}
	if caps[cap] {
		return false
	}
	caps[cap] = true
	return true
}

func (t *InFlightTracker) End(id uuid.UUID, cap Capability) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caps, ok := t.m[id]; ok {
		delete(caps, cap)
		if len(caps) == 0 {
			delete(t.m, id)
		}
	}
}

// Snapshot returns the currently running capabilities per idea.
func (t *InFlightTracker) Snapshot() map[uuid.UUID][]Capability {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[uuid.UUID][]Capability, len(t.m))
	for id, caps := range t.m {
		for cap, on := range caps {
			if on {
				out[id] = append(out[id], cap)
			}
		}
	}
	return out
}
