// Package controller contains the cooperative scheduler: one non-blocking
// Step per pass, sharing a single thread between the pump duty cycle, sensor
// sampling, display refresh, and the preset button. Every sub-task reads the
// same tick and decides for itself whether its interval has elapsed.
package controller

import (
	"log"
	"time"

	"github.com/WimObiwan/cellarpump/internal/button"
	"github.com/WimObiwan/cellarpump/internal/clock"
	"github.com/WimObiwan/cellarpump/internal/display"
	"github.com/WimObiwan/cellarpump/internal/preset"
	"github.com/WimObiwan/cellarpump/internal/pump"
	"github.com/WimObiwan/cellarpump/internal/sensor"
	"github.com/WimObiwan/cellarpump/internal/status"
)

// EventPresetChanged is emitted when a button press commits a new preset.
// Pump transition events reuse the pump package's type names.
const EventPresetChanged = "PRESET_CHANGED"

// Event is a transition assembled by the scheduler for logging and
// publishing: the raw pump/preset transition enriched with the wall-clock
// time, the cached sensor reading, and the active preset label.
type Event struct {
	Timestamp   time.Time
	Type        string // "PUMP_ON", "PUMP_OFF", "PUMP_RESET", "PRESET_CHANGED"
	Temperature float64
	Humidity    float64
	SensorValid bool
	Preset      string
}

// Options wires a Controller. Selector+Input and Presenter are optional
// capabilities: leave them nil and the scheduler simply has nothing to do for
// those sub-tasks.
type Options struct {
	Clock   clock.Clock
	WallNow func() time.Time

	Machine *pump.Machine
	Sampler *sensor.Sampler

	Selector *preset.Selector
	Input    button.Input

	Presenter       *display.Presenter
	DisplayInterval clock.Ticks

	// FallbackLabel names the schedule when no selector is configured.
	FallbackLabel string
}

// Controller owns the per-pass ordering and all scheduler-side state.
type Controller struct {
	opts Options

	lastRefresh  clock.Ticks
	refreshedYet bool

	counts status.Counts
}

// New creates a Controller.
func New(opts Options) *Controller {
	if opts.WallNow == nil {
		opts.WallNow = time.Now
	}
	return &Controller{opts: opts}
}

// Boot energizes the pump immediately so the first on-phase starts at
// power-up rather than a full cycle interval later.
func (c *Controller) Boot() []Event {
	now := c.opts.Clock.Now()
	ev, err := c.opts.Machine.TurnOn(now)
	if err != nil {
		log.Printf("relay write error: %v", err)
	}
	if ev == nil {
		return nil
	}
	c.counts.PumpOn++
	return []Event{c.enrich(ev)}
}

// Step runs one scheduler pass and returns the events it produced, in order.
// The pump tick runs before the display refresh so the rendered countdown
// reflects the state decided on this very pass.
func (c *Controller) Step() []Event {
	now := c.opts.Clock.Now()
	var events []Event

	// (a) poll and debounce the preset button
	if c.opts.Selector != nil && c.opts.Input != nil {
		events = append(events, c.pollButton(now)...)
	}

	// (b) advance the pump state machine
	if ev, err := c.opts.Machine.Tick(now); err != nil {
		log.Printf("relay write error: %v", err)
		if ev != nil {
			events = append(events, c.enrich(ev))
		}
	} else if ev != nil {
		events = append(events, c.enrich(ev))
	}

	// (c) sample the sensor if due
	if err := c.opts.Sampler.SampleIfDue(now); err != nil {
		log.Printf("sensor read error: %v", err)
	}

	// (d) decay the overlay timer
	overlay := false
	if c.opts.Selector != nil {
		overlay = c.opts.Selector.UpdateOverlay(now)
	}

	// (e) refresh the display if due and not overlaid
	if c.opts.Presenter != nil && !overlay {
		if !c.refreshedYet || clock.Elapsed(now, c.lastRefresh) >= c.opts.DisplayInterval {
			c.refreshedYet = true
			c.lastRefresh = now
			c.opts.Presenter.Refresh(now, c.opts.Machine.Snapshot(), c.opts.Sampler.Reading())
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case string(pump.EventOn):
			c.counts.PumpOn++
		case string(pump.EventOff):
			c.counts.PumpOff++
		case string(pump.EventReset):
			c.counts.PumpReset++
		case EventPresetChanged:
			c.counts.PresetChanges++
		}
	}

	return events
}

// pollButton reads the raw level, feeds the debouncer, and applies a
// committed preset change: new schedule, pump reset, overlay frame.
func (c *Controller) pollButton(now clock.Ticks) []Event {
	raw, err := c.opts.Input.Read()
	if err != nil {
		log.Printf("button read error: %v", err)
		return nil
	}

	p, err := c.opts.Selector.Process(raw, now)
	if err != nil {
		log.Printf("preset persist error: %v", err)
	}
	if p == nil {
		return nil
	}

	c.opts.Machine.SetSchedule(pump.Schedule{
		OnDuration:    p.OnDuration,
		CycleInterval: p.CycleInterval,
	})

	r := c.opts.Sampler.Reading()
	events := []Event{{
		Timestamp:   c.opts.WallNow(),
		Type:        EventPresetChanged,
		Preset:      p.Label,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		SensorValid: r.Valid(),
	}}

	if ev, rerr := c.opts.Machine.ForceReset(now); rerr != nil {
		log.Printf("relay write error: %v", rerr)
		if ev != nil {
			events = append(events, c.enrich(ev))
		}
	} else if ev != nil {
		events = append(events, c.enrich(ev))
	}

	if c.opts.Presenter != nil {
		c.opts.Presenter.ShowPreset(p.Label, c.opts.Selector.ActiveIndex(), c.opts.Selector.Count())
	}
	return events
}

// enrich attaches the wall time, cached reading, and active preset label to a
// pump transition.
func (c *Controller) enrich(ev *pump.Event) Event {
	r := c.opts.Sampler.Reading()
	return Event{
		Timestamp:   c.opts.WallNow(),
		Type:        string(ev.Type),
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		SensorValid: r.Valid(),
		Preset:      c.activeLabel(),
	}
}

// activeLabel returns the label to report on events and status.
func (c *Controller) activeLabel() string {
	if c.opts.Selector != nil {
		return c.opts.Selector.Active().Label
	}
	return c.opts.FallbackLabel
}

// State assembles the tracker state for this pass.
func (c *Controller) State() status.State {
	s := status.State{
		Pump:          c.opts.Machine.Snapshot(),
		Tick:          c.opts.Clock.Now(),
		Reading:       c.opts.Sampler.Reading(),
		SensorPresent: c.opts.Sampler.Present(),
		PresetLabel:   c.activeLabel(),
		Counts:        c.counts,
	}
	if c.opts.Selector != nil {
		s.PresetIndex = c.opts.Selector.ActiveIndex()
		s.PresetCount = c.opts.Selector.Count()
		s.OverlayActive = c.opts.Selector.OverlayActive()
	} else {
		s.PresetCount = 1
	}
	return s
}
