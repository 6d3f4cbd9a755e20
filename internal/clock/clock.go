// Package clock provides the millisecond tick source shared by every timed
// sub-task in the controller. Ticks are 32-bit and wrap, like millis() on the
// hardware this replaces, so all interval math must go through Elapsed.
package clock

import "time"

// Ticks is a monotonically increasing millisecond counter that wraps at 2^32
// (about 49.7 days).
type Ticks uint32

// Elapsed returns the number of ticks between since and now. Unsigned modular
// subtraction keeps the result correct across a counter wraparound, which is
// why callers must never compare "since + interval" against now directly.
func Elapsed(now, since Ticks) Ticks {
	return now - since
}

// Clock supplies the current tick. Components never call time.Now themselves;
// the scheduler reads the clock once per pass and hands the value down.
type Clock interface {
	Now() Ticks
}

// System derives ticks from the wall clock, anchored at process start.
type System struct {
	start time.Time
}

// NewSystem creates a System clock anchored at the current time.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Now returns milliseconds since the clock was created, truncated to 32 bits.
func (s *System) Now() Ticks {
	return Ticks(time.Since(s.start).Milliseconds())
}

// Fake is a test clock with a settable tick.
type Fake struct {
	Tick Ticks
}

// Now returns the current fake tick.
func (f *Fake) Now() Ticks {
	return f.Tick
}

// Advance moves the fake clock forward by d ticks (wrapping like the real one).
func (f *Fake) Advance(d Ticks) {
	f.Tick += d
}
