package pump

import (
	"errors"
	"math"
	"testing"

	"github.com/WimObiwan/cellarpump/internal/clock"
	"github.com/WimObiwan/cellarpump/internal/relay"
)

var testSchedule = Schedule{
	OnDuration:    60_000,        // 60s
	CycleInterval: 30 * 60_000,   // 30min
}

func TestFirstCycleCountsFromZero(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)

	// A fresh machine is off with stoppedAt=0, so the first activation is
	// due one full cycle interval after the clock's zero point.
	ev, err := m.Tick(testSchedule.CycleInterval - 1)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if ev != nil {
		t.Fatalf("expected no transition before first interval, got %v", ev)
	}

	ev, _ = m.Tick(testSchedule.CycleInterval)
	if ev == nil || ev.Type != EventOn {
		t.Fatalf("expected PUMP_ON on first due tick, got %v", ev)
	}
	if !sw.On {
		t.Error("relay should be energized")
	}
}

func TestTurnsOffAfterOnDuration(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)

	if _, err := m.TurnOn(1000); err != nil {
		t.Fatalf("turn on: %v", err)
	}

	// One tick short: still running.
	ev, _ := m.Tick(1000 + testSchedule.OnDuration - 1)
	if ev != nil {
		t.Fatalf("expected no transition before onDuration, got %v", ev)
	}
	if !m.Snapshot().Running {
		t.Fatal("pump should still be running")
	}

	// Exactly onDuration: off.
	ev, _ = m.Tick(1000 + testSchedule.OnDuration)
	if ev == nil || ev.Type != EventOff {
		t.Fatalf("expected PUMP_OFF at onDuration, got %v", ev)
	}
	if sw.On {
		t.Error("relay should be de-energized")
	}
	if got := m.Snapshot().StoppedAt; got != 1000+testSchedule.OnDuration {
		t.Errorf("stoppedAt: got %d, want %d", got, 1000+testSchedule.OnDuration)
	}
}

func TestTurnsOnAfterCycleInterval(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)
	m.TurnOn(0)
	m.TurnOff(5000)

	ev, _ := m.Tick(5000 + testSchedule.CycleInterval - 1)
	if ev != nil {
		t.Fatalf("expected no transition before cycleInterval, got %v", ev)
	}

	ev, _ = m.Tick(5000 + testSchedule.CycleInterval)
	if ev == nil || ev.Type != EventOn {
		t.Fatalf("expected PUMP_ON at cycleInterval, got %v", ev)
	}
}

// A single Tick may never both activate and deactivate, even with degenerate
// zero-length durations.
func TestSingleTransitionPerTick(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(Schedule{OnDuration: 0, CycleInterval: 0}, sw)

	ev, _ := m.Tick(100)
	if ev == nil || ev.Type != EventOn {
		t.Fatalf("expected PUMP_ON, got %v", ev)
	}
	if len(sw.Transitions) != 1 {
		t.Fatalf("expected exactly 1 relay transition in one tick, got %d", len(sw.Transitions))
	}

	ev, _ = m.Tick(100)
	if ev == nil || ev.Type != EventOff {
		t.Fatalf("expected PUMP_OFF on next tick, got %v", ev)
	}
	if len(sw.Transitions) != 2 {
		t.Fatalf("expected 2 relay transitions after two ticks, got %d", len(sw.Transitions))
	}
}

// The pump must not stay on past onDuration just because the counter wrapped.
func TestOnDurationAcrossWraparound(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)

	startedAt := clock.Ticks(math.MaxUint32 - 10_000) // 10s before wrap
	m.TurnOn(startedAt)

	// 50s after start, counter has wrapped to ~40000. Not due yet.
	ev, _ := m.Tick(startedAt + 50_000)
	if ev != nil {
		t.Fatalf("expected no transition 50s in, got %v", ev)
	}

	// 60s after start: due, even though now < startedAt numerically.
	now := startedAt + testSchedule.OnDuration
	if now > startedAt {
		t.Fatal("test setup: now should have wrapped below startedAt")
	}
	ev, _ = m.Tick(now)
	if ev == nil || ev.Type != EventOff {
		t.Fatalf("expected PUMP_OFF across wraparound, got %v", ev)
	}
}

func TestCycleIntervalAcrossWraparound(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)
	m.TurnOn(0)

	stoppedAt := clock.Ticks(math.MaxUint32 - 60_000) // 1min before wrap
	m.TurnOff(stoppedAt)

	ev, _ := m.Tick(stoppedAt + testSchedule.CycleInterval - 1)
	if ev != nil {
		t.Fatalf("expected no transition, got %v", ev)
	}
	ev, _ = m.Tick(stoppedAt + testSchedule.CycleInterval)
	if ev == nil || ev.Type != EventOn {
		t.Fatalf("expected PUMP_ON across wraparound, got %v", ev)
	}
}

func TestTurnOnIsIdempotent(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)

	ev, _ := m.TurnOn(100)
	if ev == nil {
		t.Fatal("expected event from first TurnOn")
	}
	ev, _ = m.TurnOn(200)
	if ev != nil {
		t.Fatalf("expected no event from repeated TurnOn, got %v", ev)
	}
	if got := m.Snapshot().StartedAt; got != 100 {
		t.Errorf("startedAt must not move on repeated TurnOn: got %d", got)
	}
}

func TestForceResetWhileRunning(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)
	m.TurnOn(1000)

	ev, err := m.ForceReset(2500)
	if err != nil {
		t.Fatalf("force reset: %v", err)
	}
	if ev == nil || ev.Type != EventReset {
		t.Fatalf("expected PUMP_RESET, got %v", ev)
	}
	snap := m.Snapshot()
	if snap.Running {
		t.Error("pump should be off after force reset")
	}
	if snap.StoppedAt != 2500 {
		t.Errorf("stoppedAt: got %d, want 2500", snap.StoppedAt)
	}
	if sw.On {
		t.Error("relay should be de-energized")
	}
}

func TestForceResetWhileStoppedReanchors(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)
	m.TurnOn(0)
	m.TurnOff(1000)

	ev, _ := m.ForceReset(5000)
	if ev != nil {
		t.Fatalf("expected no event when already off, got %v", ev)
	}
	if got := m.Snapshot().StoppedAt; got != 5000 {
		t.Errorf("stoppedAt: got %d, want 5000", got)
	}
}

// A relay write failure must not wedge the state machine: the transition
// commits and the error surfaces for logging.
func TestRelayErrorStillTransitions(t *testing.T) {
	sw := relay.NewFakeSwitch()
	sw.SetError = errors.New("gpio write failed")
	m := NewMachine(testSchedule, sw)

	ev, err := m.TurnOn(100)
	if err == nil {
		t.Fatal("expected relay error")
	}
	if ev == nil || ev.Type != EventOn {
		t.Fatalf("expected PUMP_ON despite relay error, got %v", ev)
	}
	if !m.Snapshot().Running {
		t.Error("machine should consider itself running")
	}
}

func TestRemaining(t *testing.T) {
	sw := relay.NewFakeSwitch()
	m := NewMachine(testSchedule, sw)
	m.TurnOn(0)

	snap := m.Snapshot()
	if got := snap.Remaining(45_000); got != 15_000 {
		t.Errorf("remaining while on: got %d, want 15000", got)
	}
	if got := snap.Remaining(90_000); got != 0 {
		t.Errorf("remaining past deadline should clamp to 0, got %d", got)
	}

	m.TurnOff(60_000)
	snap = m.Snapshot()
	if got := snap.Remaining(60_000 + 60_000); got != 29*60_000 {
		t.Errorf("remaining while off: got %d, want %d", got, 29*60_000)
	}
}
