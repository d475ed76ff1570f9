package gpio

import (
	"errors"
	"sync"
)

// FakeReader is a test double that returns scripted line states.
type FakeReader struct {
	mu sync.Mutex

	// Samples are returned in order; the last one repeats.
	Samples []bool

	index int

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, will be returned by Read.
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}
	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// SetError changes ReadError while a poller may be reading.
func (f *FakeReader) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadError = err
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Reset rewinds to the first sample.
func (f *FakeReader) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = 0
	f.Closed = false
}
