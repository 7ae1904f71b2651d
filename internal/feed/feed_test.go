package feed

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/ratesdesk/execfeed/internal/synth"
	"github.com/ratesdesk/execfeed/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingJournal struct {
	indexes []int64
	failAt  int64
}

func (j *recordingJournal) AppendRecord(_ context.Context, rec synth.ExecutionRecord) error {
	if j.failAt > 0 && rec.Index == j.failAt {
		return errors.New("journal unavailable")
	}
	j.indexes = append(j.indexes, rec.Index)
	return nil
}

func newTestFeed(t *testing.T, tbl Appender, j Journal, maxRows int64) *Feed {
	t.Helper()
	counter, err := NewCounter(0)
	require.NoError(t, err)
	s := synth.NewSynthesizer(rand.New(rand.NewSource(7)))
	return New(counter, s, tbl, j, time.Millisecond, maxRows, zap.NewNop())
}

func TestCounter(t *testing.T) {
	_, err := NewCounter(-1)
	require.ErrorIs(t, err, ErrInvalidIndex)

	c, err := NewCounter(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Peek())

	c.Advance()
	c.Advance()
	assert.Equal(t, int64(2), c.Peek())

	c, err = NewCounter(500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), c.Peek())
}

func TestRun_GeneratesContiguousSequence(t *testing.T) {
	tbl := table.New()
	j := &recordingJournal{}
	f := newTestFeed(t, tbl, j, 25)

	err := f.Run(context.Background())
	require.NoError(t, err, "feed should stop cleanly at its row budget")

	assert.Equal(t, int64(25), f.Generated())
	require.Equal(t, 25, tbl.Len())

	rows := tbl.Snapshot()
	for i, rec := range rows {
		assert.Equal(t, int64(i), rec.Index)
	}

	// The journal saw the same sequence, in the same order.
	require.Len(t, j.indexes, 25)
	for i, ii := range j.indexes {
		assert.Equal(t, int64(i), ii)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	tbl := table.New()
	f := newTestFeed(t, tbl, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("feed did not stop on cancellation")
	}

	// Whatever was generated before cancellation is contiguous.
	rows := tbl.Snapshot()
	for i, rec := range rows {
		require.Equal(t, int64(i), rec.Index)
	}
}

func TestTick_JournalFailureIsFatal(t *testing.T) {
	tbl := table.New()
	j := &recordingJournal{failAt: 3}
	f := newTestFeed(t, tbl, j, 10)

	err := f.Run(context.Background())
	require.Error(t, err, "a lost row must stop the feed")
	assert.Equal(t, int64(3), f.Generated(), "rows before the failure were appended")
}

func TestTick_DeterministicFieldsFollowIndex(t *testing.T) {
	tbl := table.New()
	f := newTestFeed(t, tbl, nil, 0)

	ctx := context.Background()
	for i := 0; i < 12; i++ {
		require.NoError(t, f.Tick(ctx))
	}

	rec, ok := tbl.Get(6)
	require.True(t, ok)
	assert.Equal(t, "EXE-000006", rec.ExecID)
	assert.Equal(t, "UST 2Y", rec.Symbol)
	assert.Equal(t, "BUY", rec.Side)
}
