package table

import (
	"sync"
	"testing"

	"github.com/ratesdesk/execfeed/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(ii int64) synth.ExecutionRecord {
	return synth.ExecutionRecord{Index: ii, ExecID: "EXE-000000"}
}

func TestAppend_ContiguousSequence(t *testing.T) {
	tbl := New()

	for ii := int64(0); ii < 100; ii++ {
		require.NoError(t, tbl.Append(record(ii)))
	}

	assert.Equal(t, 100, tbl.Len())
	assert.Equal(t, int64(100), tbl.NextIndex())

	rows := tbl.Snapshot()
	require.Len(t, rows, 100)
	for i, rec := range rows {
		assert.Equal(t, int64(i), rec.Index, "indexes must be 0..N-1 with no gaps or reordering")
	}
}

func TestAppend_RejectsOutOfOrder(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Append(record(0)))

	err := tbl.Append(record(2))
	require.ErrorIs(t, err, ErrOutOfOrder, "gap must be rejected")

	err = tbl.Append(record(0))
	require.ErrorIs(t, err, ErrOutOfOrder, "replay must be rejected")

	// The failed appends must not have changed the cursor.
	require.NoError(t, tbl.Append(record(1)))
	assert.Equal(t, 2, tbl.Len())
}

func TestNewAt_ResumesFromIndex(t *testing.T) {
	tbl := NewAt(500)

	require.ErrorIs(t, tbl.Append(record(0)), ErrOutOfOrder)
	require.NoError(t, tbl.Append(record(500)))
	require.NoError(t, tbl.Append(record(501)))

	assert.Equal(t, 2, tbl.Len())

	rec, ok := tbl.Get(501)
	require.True(t, ok)
	assert.Equal(t, int64(501), rec.Index)

	_, ok = tbl.Get(499)
	assert.False(t, ok, "rows before the resume point are not held in memory")
}

func TestGet(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Append(record(0)))

	rec, ok := tbl.Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(0), rec.Index)

	_, ok = tbl.Get(1)
	assert.False(t, ok)

	_, ok = tbl.Get(-1)
	assert.False(t, ok)
}

func TestSnapshot_ConcurrentReaders(t *testing.T) {
	tbl := New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ii := int64(0); ii < 1000; ii++ {
			if err := tbl.Append(record(ii)); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	// Readers race the producer; every snapshot must be a contiguous prefix.
	for i := 0; i < 50; i++ {
		rows := tbl.Snapshot()
		for j, rec := range rows {
			if rec.Index != int64(j) {
				t.Fatalf("snapshot not contiguous at %d: got index %d", j, rec.Index)
			}
		}
	}

	wg.Wait()
	assert.Equal(t, 1000, tbl.Len())
}
