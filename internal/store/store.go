// Package store persists the active preset index across restarts. The
// contract is EEPROM-shaped (addressed single bytes) so the selector logic
// stays identical whether the backing is a file on the Pi or a fake in tests.
package store

// Store reads and writes single bytes at small addresses.
type Store interface {
	ReadByte(addr int) (byte, error)
	WriteByte(addr int, b byte) error
}

// Layout of the persisted selector state.
const (
	// AddrMarker holds Marker when the store has been written at least once.
	AddrMarker = 0
	// AddrIndex holds the active preset index.
	AddrIndex = 1

	// Marker is the validity byte. Anything else at AddrMarker means the
	// store is absent or from another program, and the selector falls back
	// to preset 0.
	Marker = 0xA5

	// Size is the number of bytes the selector uses.
	Size = 2
)
