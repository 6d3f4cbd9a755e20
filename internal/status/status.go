// Package status provides a thread-safe status tracker for the cellarpump
// daemon. The control loop writes it once per pass; HTTP handlers read it.
package status

import (
	"sync"
	"time"

	"github.com/WimObiwan/cellarpump/internal/clock"
	"github.com/WimObiwan/cellarpump/internal/pump"
	"github.com/WimObiwan/cellarpump/internal/sensor"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	SensorIntervalMs int64
	DisplayMs        int64
	DebounceMs       int64
	OverlayMs        int64
	Broker           string
	HTTPAddr         string
}

// Counts tracks the number of each event type since startup.
type Counts struct {
	PumpOn        int
	PumpOff       int
	PumpReset     int
	PresetChanges int
}

// State is the part of the snapshot the control loop refreshes every pass.
type State struct {
	Pump          pump.Snapshot
	Tick          clock.Ticks
	Reading       sensor.Reading
	SensorPresent bool
	PresetLabel   string
	PresetIndex   int
	PresetCount   int
	OverlayActive bool
	Counts        Counts
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// RemainingSeconds returns the seconds until the pump's next transition.
func (s Snapshot) RemainingSeconds() int64 {
	return int64(s.Pump.Remaining(s.Tick)) / 1000
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the loop state. Called from the control loop on every pass.
func (t *Tracker) Update(s State) {
	t.mu.Lock()
	t.snap.State = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
