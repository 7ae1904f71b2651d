package feed

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex is returned when a row index would be negative or
// non-increasing.
var ErrInvalidIndex = errors.New("invalid row index")

// Counter owns the monotonic row index. The index is explicitly passed
// to the synthesizer on every tick rather than hidden in process-wide
// state, and only ever moves forward.
type Counter struct {
	next int64
}

// NewCounter creates a counter whose next issued index is start.
// A fresh feed starts at 0; a resumed feed starts at the journal's
// last index plus one.
func NewCounter(start int64) (*Counter, error) {
	if start < 0 {
		return nil, fmt.Errorf("%w: start %d is negative", ErrInvalidIndex, start)
	}
	return &Counter{next: start}, nil
}

// Peek returns the index the next row will carry.
func (c *Counter) Peek() int64 {
	return c.next
}

// Advance moves past the index just issued. Called only after the
// row's append is visible, so row order always equals generation order.
func (c *Counter) Advance() {
	c.next++
}
