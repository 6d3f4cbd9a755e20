// Package display renders controller status on the 16x2 RGB-backlight LCD.
// Formatting and the backlight policy are pure functions over pump/sensor
// state, so they are tested without hardware; the Device interface is the
// thin fire-and-forget surface the real LCD implements.
package display

import (
	"fmt"

	"github.com/WimObiwan/cellarpump/internal/clock"
	"github.com/WimObiwan/cellarpump/internal/pump"
	"github.com/WimObiwan/cellarpump/internal/sensor"
)

// Columns is the character width of the panel. Print truncates to this.
const Columns = 16

// Device is the display hardware surface. Calls are fire-and-forget: the
// core never waits on an acknowledgment, and a failed write costs one frame.
type Device interface {
	Clear()
	SetCursor(col, row int)
	Print(text string)
	SetRGB(r, g, b uint8)
	Close() error
}

// Color is a backlight color.
type Color struct {
	R, G, B uint8
}

// Backlight colors, matching the original panel brightness.
var (
	ColorRed    = Color{100, 0, 0}
	ColorGreen  = Color{0, 100, 0}
	ColorOff    = Color{0, 0, 0}
	ColorPreset = Color{0, 0, 100}
)

// NoSensorLine is line 1 when no sensor is attached.
const NoSensorLine = "No sensor"

// FormatReading renders line 1, e.g. "T:21.5C H:60.1%". Before the first
// successful sample the values are dashed out.
func FormatReading(r sensor.Reading) string {
	if !r.Valid() {
		return "T:--.-C H:--.-%"
	}
	return fmt.Sprintf("T:%.1fC H:%.1f%%", r.Temperature, r.Humidity)
}

// FormatCountdown renders line 2: time until the pump turns off while
// running (always seconds), or until the next activation while stopped
// (seconds up to 120s, then minutes rounded half-up, then hours once minutes
// would exceed 120).
func FormatCountdown(snap pump.Snapshot, now clock.Ticks) string {
	remaining := snap.Remaining(now)
	if snap.Running {
		return fmt.Sprintf("Pump on %ds", remaining/1000)
	}

	secs := remaining / 1000
	if secs <= 120 {
		return fmt.Sprintf("Pump off %ds", secs)
	}
	mins := (remaining + 30_000) / 60_000
	if mins <= 120 {
		return fmt.Sprintf("Pump off %dm", mins)
	}
	hours := (remaining + 1_800_000) / 3_600_000
	return fmt.Sprintf("Pump off %dh", hours)
}

// Backlight decides the normal (non-overlay) backlight color: red whenever
// the pump runs; green when the next activation is close; otherwise off.
// The comparison is against absolute remaining time, independent of how long
// the cycle interval is.
func Backlight(snap pump.Snapshot, now, greenThreshold clock.Ticks) Color {
	if snap.Running {
		return ColorRed
	}
	if snap.Remaining(now) < greenThreshold {
		return ColorGreen
	}
	return ColorOff
}

// Presenter draws full frames on a Device.
type Presenter struct {
	dev            Device
	greenThreshold clock.Ticks
	sensorPresent  bool
}

// NewPresenter creates a Presenter. sensorPresent selects between the
// reading line and the fixed no-sensor placeholder.
func NewPresenter(dev Device, greenThreshold clock.Ticks, sensorPresent bool) *Presenter {
	return &Presenter{dev: dev, greenThreshold: greenThreshold, sensorPresent: sensorPresent}
}

// Splash draws the boot frame.
func (p *Presenter) Splash() {
	p.dev.Clear()
	p.dev.SetRGB(ColorOff.R, ColorOff.G, ColorOff.B)
	p.dev.SetCursor(0, 0)
	p.dev.Print("Initializing...")
}

// Refresh draws the normal two-line status frame. The scheduler only calls
// this when the refresh interval elapsed and no overlay is showing.
func (p *Presenter) Refresh(now clock.Ticks, snap pump.Snapshot, reading sensor.Reading) {
	p.dev.Clear()

	line1 := NoSensorLine
	if p.sensorPresent {
		line1 = FormatReading(reading)
	}
	p.dev.SetCursor(0, 0)
	p.dev.Print(truncate(line1))

	p.dev.SetCursor(0, 1)
	p.dev.Print(truncate(FormatCountdown(snap, now)))

	c := Backlight(snap, now, p.greenThreshold)
	p.dev.SetRGB(c.R, c.G, c.B)
}

// ShowPreset draws the preset confirmation overlay: the label and position,
// on a distinct backlight color.
func (p *Presenter) ShowPreset(label string, index, count int) {
	p.dev.Clear()
	p.dev.SetCursor(0, 0)
	p.dev.Print(truncate(label))
	p.dev.SetCursor(0, 1)
	p.dev.Print(truncate(fmt.Sprintf("preset %d/%d", index+1, count)))
	p.dev.SetRGB(ColorPreset.R, ColorPreset.G, ColorPreset.B)
}

func truncate(s string) string {
	if len(s) > Columns {
		return s[:Columns]
	}
	return s
}
