// Package preset holds the schedule presets and the button-driven selector.
// The selector debounces the raw button level, cycles through the preset list
// on each committed press, persists the active index, and owns the transient
// confirmation overlay shown after a change.
package preset

import (
	"fmt"

	"github.com/WimObiwan/cellarpump/internal/clock"
	"github.com/WimObiwan/cellarpump/internal/store"
)

// LabelMax is the display width; longer labels are truncated when rendered.
const LabelMax = 16

// Preset is one entry of the fixed schedule list. The index in the list is
// its identity.
type Preset struct {
	OnDuration    clock.Ticks
	CycleInterval clock.Ticks
	Label         string
}

// Selector debounces the preset button and tracks the active preset.
type Selector struct {
	presets []Preset
	st      store.Store

	active int

	stable   bool // last committed level
	raw      bool // last observed raw level
	rawSince clock.Ticks

	debounce      clock.Ticks
	overlayWindow clock.Ticks

	overlayActive    bool
	overlayStartedAt clock.Ticks
}

// NewSelector creates a Selector over the given presets, restoring the active
// index from the store. An absent or invalid store (bad marker, out-of-range
// index, read error) falls back to index 0; that is recovery, not a fault.
func NewSelector(presets []Preset, st store.Store, debounce, overlayWindow clock.Ticks) (*Selector, error) {
	if len(presets) == 0 {
		return nil, fmt.Errorf("preset: empty preset list")
	}
	return &Selector{
		presets:       presets,
		st:            st,
		active:        loadIndex(st, len(presets)),
		debounce:      debounce,
		overlayWindow: overlayWindow,
	}, nil
}

func loadIndex(st store.Store, n int) int {
	if st == nil {
		return 0
	}
	marker, err := st.ReadByte(store.AddrMarker)
	if err != nil || marker != store.Marker {
		return 0
	}
	idx, err := st.ReadByte(store.AddrIndex)
	if err != nil || int(idx) >= n {
		return 0
	}
	return int(idx)
}

// Process feeds one raw button sample into the debouncer. It returns the new
// active preset when a press was committed this pass, else nil. The error, if
// any, is a best-effort persistence failure: the preset change has already
// taken effect in memory.
func (s *Selector) Process(raw bool, now clock.Ticks) (*Preset, error) {
	if raw != s.raw {
		// Level moved: restart the stability window. A bouncing contact
		// keeps landing here and never commits.
		s.raw = raw
		s.rawSince = now
		return nil, nil
	}

	if raw == s.stable {
		return nil, nil
	}
	if clock.Elapsed(now, s.rawSince) < s.debounce {
		return nil, nil
	}

	s.stable = raw
	if !raw {
		// Release edge: commit the level, no action.
		return nil, nil
	}
	return s.press(now)
}

// press advances the active index circularly, persists it, and opens the
// overlay window.
func (s *Selector) press(now clock.Ticks) (*Preset, error) {
	s.active = (s.active + 1) % len(s.presets)
	s.overlayActive = true
	s.overlayStartedAt = now

	p := s.presets[s.active]
	var err error
	if s.st != nil {
		if werr := s.st.WriteByte(store.AddrMarker, store.Marker); werr != nil {
			err = fmt.Errorf("persist marker: %w", werr)
		} else if werr := s.st.WriteByte(store.AddrIndex, byte(s.active)); werr != nil {
			err = fmt.Errorf("persist index: %w", werr)
		}
	}
	return &p, err
}

// UpdateOverlay decays the overlay timer and reports whether the overlay is
// still showing. The normal display refresh is suppressed while it is.
func (s *Selector) UpdateOverlay(now clock.Ticks) bool {
	if s.overlayActive && clock.Elapsed(now, s.overlayStartedAt) >= s.overlayWindow {
		s.overlayActive = false
	}
	return s.overlayActive
}

// OverlayActive reports the overlay state without decaying the timer.
func (s *Selector) OverlayActive() bool {
	return s.overlayActive
}

// ActiveIndex returns the index of the active preset.
func (s *Selector) ActiveIndex() int {
	return s.active
}

// Active returns the active preset.
func (s *Selector) Active() Preset {
	return s.presets[s.active]
}

// Count returns the number of presets.
func (s *Selector) Count() int {
	return len(s.presets)
}
