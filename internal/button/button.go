// Package button reads the preset push button with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package button

// Input reads the raw button level. Debouncing is the preset selector's job;
// this interface reports the instantaneous level only.
type Input interface {
	// Read returns the logical level: true = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultPin is the preset button pin (BCM numbering).
const DefaultPin = 17
