//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads one line from actual hardware.
type RealReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealReader requests line on chip as an input with pull-down. With
// activeLow a raw 0 reads as true.
func NewRealReader(chipName string, offset int, activeLow bool) (*RealReader, error) {
	if chipName == "" {
		chipName = DefaultChip
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullDown}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := chip.RequestLine(offset, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}

	return &RealReader{chip: chip, line: line}, nil
}

// Read returns true when the line is active.
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line: %w", err)
	}
	return v == 1, nil
}

// Close puts the line back to input with pull-down, the Pi boot default,
// then releases it.
func (r *RealReader) Close() error {
	var errs []error
	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
