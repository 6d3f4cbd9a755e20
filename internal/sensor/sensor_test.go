package sensor

import (
	"errors"
	"testing"

	"github.com/WimObiwan/cellarpump/internal/clock"
)

func TestFirstSampleFiresImmediately(t *testing.T) {
	r := NewFakeReader(21.5, 60.2)
	s := NewSampler(r, 2000)

	if err := s.SampleIfDue(5); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if r.Reads != 1 {
		t.Fatalf("expected 1 read, got %d", r.Reads)
	}
	got := s.Reading()
	if !got.Valid() {
		t.Fatal("reading should be valid after first sample")
	}
	if got.Temperature != 21.5 || got.Humidity != 60.2 {
		t.Errorf("reading: got %+v", got)
	}
	if got.SampledAt != 5 {
		t.Errorf("SampledAt: got %d, want 5", got.SampledAt)
	}
}

func TestNeverSamplesFasterThanInterval(t *testing.T) {
	r := NewFakeReader(20, 50)
	s := NewSampler(r, 2000)

	s.SampleIfDue(0)
	for now := clock.Ticks(1); now < 2000; now += 100 {
		s.SampleIfDue(now)
	}
	if r.Reads != 1 {
		t.Fatalf("expected 1 read inside interval, got %d", r.Reads)
	}

	s.SampleIfDue(2000)
	if r.Reads != 2 {
		t.Fatalf("expected 2nd read at interval boundary, got %d", r.Reads)
	}
}

func TestFailedReadHoldsPreviousValues(t *testing.T) {
	r := NewFakeReader(18.3, 71.0)
	s := NewSampler(r, 2000)
	s.SampleIfDue(0)
	before := s.Reading()

	r.ReadError = errors.New("bus error")
	if err := s.SampleIfDue(2000); err == nil {
		t.Fatal("expected error from failed sample")
	}
	if s.Reading() != before {
		t.Errorf("failed read must leave reading unchanged: got %+v, want %+v", s.Reading(), before)
	}

	// The failed read still consumed the interval: no retry storm.
	s.SampleIfDue(2001)
	if r.Reads != 2 {
		t.Fatalf("failing sensor must not be retried inside interval, reads=%d", r.Reads)
	}

	// Retried once per interval, values still held.
	s.SampleIfDue(4000)
	if r.Reads != 3 {
		t.Fatalf("expected retry at next interval, reads=%d", r.Reads)
	}
	if s.Reading() != before {
		t.Errorf("reading changed after repeated failures: %+v", s.Reading())
	}
}

func TestAbsentSensor(t *testing.T) {
	s := NewSampler(nil, 2000)
	if err := s.SampleIfDue(100); err != nil {
		t.Fatalf("absent sensor should be a no-op, got %v", err)
	}
	if s.Reading().Valid() {
		t.Error("absent sensor must never produce a valid reading")
	}
	if s.Present() {
		t.Error("Present should be false with nil reader")
	}
}

func TestDHT20CRC(t *testing.T) {
	// CRC of a single 0x00 byte with poly 0x31, init 0xFF.
	if got := crc8([]byte{0x00}); got != 0xAC {
		t.Errorf("crc8(00): got %#x, want 0xac", got)
	}
	// CRC property: appending the CRC yields zero remainder.
	data := []byte{0x1C, 0x5E, 0x3A, 0x91, 0x44, 0x07}
	full := append(append([]byte{}, data...), crc8(data))
	if got := crc8(full); got != 0 {
		t.Errorf("crc over data+crc: got %#x, want 0", got)
	}
}
