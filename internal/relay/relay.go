// Package relay drives the pump relay output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package relay

// Switch energizes or de-energizes the pump relay.
// Only the pump state machine calls Set; nothing else touches the relay.
type Switch interface {
	// Set drives the relay coil: true = energized (pump on).
	Set(on bool) error

	// Close de-energizes the relay and releases GPIO resources.
	Close() error
}

// DefaultPin is the relay control pin (BCM numbering), matching the Grove
// relay wiring on the controller board.
const DefaultPin = 4
