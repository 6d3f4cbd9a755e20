// Package sensor provides ambient temperature/humidity sampling with hardware
// abstraction. The real implementation talks to a Grove DHT20 over I2C.
// The fake implementation allows testing without hardware.
package sensor

import "github.com/WimObiwan/cellarpump/internal/clock"

// Reader performs one sensor measurement.
type Reader interface {
	// Read returns (temperature °C, humidity %RH). Failures are transient:
	// the caller holds its previous values and retries on the next interval.
	Read() (float64, float64, error)

	// Close releases bus resources.
	Close() error
}

// Reading is the last successful measurement.
type Reading struct {
	Temperature float64
	Humidity    float64
	SampledAt   clock.Ticks
	valid       bool
}

// Valid reports whether any measurement has succeeded yet.
func (r Reading) Valid() bool {
	return r.valid
}

// Sampler polls a Reader at a fixed interval, caching the last good reading.
// A failed read leaves the cached values untouched but still consumes the
// interval, so a dead sensor is retried once per interval, never busy-polled.
type Sampler struct {
	reader   Reader
	interval clock.Ticks

	reading   Reading
	lastPoll  clock.Ticks
	polledYet bool
}

// NewSampler creates a Sampler. A nil reader means the sensor capability is
// absent: SampleIfDue becomes a no-op and Reading stays invalid forever.
func NewSampler(reader Reader, interval clock.Ticks) *Sampler {
	return &Sampler{reader: reader, interval: interval}
}

// SampleIfDue performs at most one read per interval. Returns the read error
// for logging, or nil when not due, absent, or successful.
func (s *Sampler) SampleIfDue(now clock.Ticks) error {
	if s.reader == nil {
		return nil
	}
	if s.polledYet && clock.Elapsed(now, s.lastPoll) < s.interval {
		return nil
	}
	s.lastPoll = now
	s.polledYet = true

	temp, hum, err := s.reader.Read()
	if err != nil {
		return err
	}
	s.reading = Reading{
		Temperature: temp,
		Humidity:    hum,
		SampledAt:   now,
		valid:       true,
	}
	return nil
}

// Reading returns the cached reading (zero-valued and !Valid before the first
// successful sample).
func (s *Sampler) Reading() Reading {
	return s.reading
}

// Present reports whether a sensor is attached.
func (s *Sampler) Present() bool {
	return s.reader != nil
}
