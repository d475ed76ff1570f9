// Package gpio reads digital input lines that drive switch-like tiles.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// DefaultChip is the first GPIO chip on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Reader reads one input line.
type Reader interface {
	// Read returns the logical state of the line.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}
