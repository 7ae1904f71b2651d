// Package table keeps the growing, time-ordered sequence of execution
// records. The table is append-only: rows are never updated or deleted,
// and appends must arrive in row-index order from a single producer.
// Readers may snapshot concurrently with appends.
package table

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ratesdesk/execfeed/internal/synth"
)

// ErrOutOfOrder is returned when an append would break index contiguity.
var ErrOutOfOrder = errors.New("append out of order")

// Table is an in-memory append-only execution table.
type Table struct {
	mu   sync.RWMutex
	base int64
	rows []synth.ExecutionRecord
}

// New creates an empty table. The next accepted index is 0.
func New() *Table {
	return &Table{}
}

// NewAt creates an empty table whose first accepted index is next.
// Used when a restarted feed resumes from a journaled index; earlier
// rows live only in the journal and the stream.
func NewAt(next int64) *Table {
	return &Table{base: next}
}

// Append adds the next row. The record's index must be exactly one past
// the last appended index; anything else returns ErrOutOfOrder.
func (t *Table) Append(rec synth.ExecutionRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.base + int64(len(t.rows))
	if rec.Index != next {
		return fmt.Errorf("%w: got index %d, want %d", ErrOutOfOrder, rec.Index, next)
	}

	t.rows = append(t.rows, rec)
	return nil
}

// Len returns the number of rows held in memory.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// NextIndex returns the row index the next Append must carry.
func (t *Table) NextIndex() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.base + int64(len(t.rows))
}

// Get returns the row with index ii, if held in memory.
func (t *Table) Get(ii int64) (synth.ExecutionRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pos := ii - t.base
	if pos < 0 || pos >= int64(len(t.rows)) {
		return synth.ExecutionRecord{}, false
	}
	return t.rows[pos], true
}

// Snapshot returns a copy of all rows in append order.
func (t *Table) Snapshot() []synth.ExecutionRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]synth.ExecutionRecord, len(t.rows))
	copy(out, t.rows)
	return out
}
