// Package pump contains the pump duty-cycle state machine. The machine owns
// the relay: nothing else in the daemon energizes or de-energizes it. Time is
// always injected as a clock.Ticks parameter, so the machine itself never
// blocks and is fully testable without hardware.
package pump

import (
	"github.com/WimObiwan/cellarpump/internal/clock"
	"github.com/WimObiwan/cellarpump/internal/relay"
)

// EventType represents a pump transition event.
type EventType string

const (
	// EventOn is a schedule-driven activation.
	EventOn EventType = "PUMP_ON"
	// EventOff is a schedule-driven deactivation.
	EventOff EventType = "PUMP_OFF"
	// EventReset is a deactivation forced by a preset change, so log
	// consumers can tell it apart from the duty cycle ending.
	EventReset EventType = "PUMP_RESET"
)

// Event represents a pump transition to be logged and published.
type Event struct {
	Type EventType
	At   clock.Ticks
}

// Schedule is the active duty cycle: how long the pump runs and how long it
// rests between runs.
type Schedule struct {
	OnDuration    clock.Ticks
	CycleInterval clock.Ticks
}

// Snapshot is a value copy of the machine state, safe to hand to the display
// presenter and the status tracker.
type Snapshot struct {
	Running   bool
	StartedAt clock.Ticks
	StoppedAt clock.Ticks
	Schedule  Schedule
}

// Remaining returns the ticks until the next scheduled transition: off-time
// left while running, rest-time left while stopped. Clamped to zero once the
// deadline has passed.
func (s Snapshot) Remaining(now clock.Ticks) clock.Ticks {
	var deadline, since clock.Ticks
	if s.Running {
		deadline, since = s.Schedule.OnDuration, s.StartedAt
	} else {
		deadline, since = s.Schedule.CycleInterval, s.StoppedAt
	}
	elapsed := clock.Elapsed(now, since)
	if elapsed >= deadline {
		return 0
	}
	return deadline - elapsed
}

// Machine decides pump transitions from elapsed time alone.
//
// A new machine is off. Boot activation is the caller's job: an explicit
// TurnOn right after wiring, so the first on-phase starts at power-up.
type Machine struct {
	sched     Schedule
	running   bool
	startedAt clock.Ticks
	stoppedAt clock.Ticks
	sw        relay.Switch
}

// NewMachine creates a Machine driving the given relay switch.
func NewMachine(sched Schedule, sw relay.Switch) *Machine {
	return &Machine{sched: sched, sw: sw}
}

// Schedule returns the active schedule.
func (m *Machine) Schedule() Schedule {
	return m.sched
}

// SetSchedule swaps the active durations. Callers changing the schedule
// mid-cycle should ForceReset so the new interval counts from a known anchor.
func (m *Machine) SetSchedule(sched Schedule) {
	m.sched = sched
}

// Snapshot returns a value copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Running:   m.running,
		StartedAt: m.startedAt,
		StoppedAt: m.stoppedAt,
		Schedule:  m.sched,
	}
}

// TurnOn energizes the relay. No-op if already running. The state transition
// commits even if the relay write fails; the error is returned for logging.
func (m *Machine) TurnOn(now clock.Ticks) (*Event, error) {
	if m.running {
		return nil, nil
	}
	m.running = true
	m.startedAt = now
	err := m.sw.Set(true)
	return &Event{Type: EventOn, At: now}, err
}

// TurnOff de-energizes the relay. No-op if already off.
func (m *Machine) TurnOff(now clock.Ticks) (*Event, error) {
	if !m.running {
		return nil, nil
	}
	m.running = false
	m.stoppedAt = now
	err := m.sw.Set(false)
	return &Event{Type: EventOff, At: now}, err
}

// Tick advances the machine by one pass. At most one transition can occur per
/// call: the running check and the stopped check are exclusive branches, and a
// transition flips which branch the next call takes.
func (m *Machine) Tick(now clock.Ticks) (*Event, error) {
	if m.running {
		if clock.Elapsed(now, m.startedAt) >= m.sched.OnDuration {
			return m.TurnOff(now)
		}
		return nil, nil
	}
	if clock.Elapsed(now, m.stoppedAt) >= m.sched.CycleInterval {
		return m.TurnOn(now)
	}
	return nil, nil
}

// ForceReset stops the pump (if running) without the normal off-event and
// re-anchors the cycle interval at now. Used on preset changes so the new
// schedule counts from the press, not from whenever the pump last stopped.
func (m *Machine) ForceReset(now clock.Ticks) (*Event, error) {
	var err error
	var ev *Event
	if m.running {
		m.running = false
		err = m.sw.Set(false)
		ev = &Event{Type: EventReset, At: now}
	}
	m.stoppedAt = now
	return ev, err
}
