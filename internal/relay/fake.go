package relay

// FakeSwitch records relay transitions for test assertions.
type FakeSwitch struct {
	// On is the current relay state.
	On bool

	// Transitions records every Set call in order.
	Transitions []bool

	// SetError, if set, will be returned by Set (state is still recorded,
	// mirroring a relay whose feedback is unknown).
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSwitch creates a FakeSwitch in the off state.
func NewFakeSwitch() *FakeSwitch {
	return &FakeSwitch{}
}

// Set records the transition.
func (f *FakeSwitch) Set(on bool) error {
	f.On = on
	f.Transitions = append(f.Transitions, on)
	return f.SetError
}

// Close marks the switch as closed and forces it off.
func (f *FakeSwitch) Close() error {
	f.On = false
	f.Closed = true
	return nil
}
