// Package feed drives the ticking execution table: one synthesized row
// per tick, appended to the in-memory table and the journal by a single
// goroutine so appends never overlap.
package feed

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ratesdesk/execfeed/internal/synth"
)

// Appender receives each synthesized row, in index order.
type Appender interface {
	Append(rec synth.ExecutionRecord) error
}

// Journal durably records each row before it reaches the stream.
type Journal interface {
	AppendRecord(ctx context.Context, rec synth.ExecutionRecord) error
}

// Feed generates one execution row per cadence tick.
type Feed struct {
	counter   *Counter
	synth     *synth.Synthesizer
	table     Appender
	journal   Journal
	cadence   time.Duration
	maxRows   int64
	logger    *zap.Logger
	generated int64
}

// New creates a feed. journal may be nil for an in-memory-only feed
// (tests, dry runs). maxRows of 0 means run until the context ends.
func New(counter *Counter, s *synth.Synthesizer, table Appender, journal Journal, cadence time.Duration, maxRows int64, logger *zap.Logger) *Feed {
	return &Feed{
		counter: counter,
		synth:   s,
		table:   table,
		journal: journal,
		cadence: cadence,
		maxRows: maxRows,
		logger:  logger,
	}
}

// Run ticks until the context is cancelled or the row budget is spent.
// Any append failure is fatal: continuing past a lost row would break
// the contiguous-index invariant.
func (f *Feed) Run(ctx context.Context) error {
	f.logger.Info("starting feed",
		zap.Int64("next_index", f.counter.Peek()),
		zap.Duration("cadence", f.cadence),
		zap.Int64("max_rows", f.maxRows),
	)

	ticker := time.NewTicker(f.cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("feed stopping", zap.Int64("generated", f.Generated()))
			return ctx.Err()
		case <-ticker.C:
			if err := f.Tick(ctx); err != nil {
				return err
			}
			if f.maxRows > 0 && f.Generated() >= f.maxRows {
				f.logger.Info("feed row budget reached", zap.Int64("generated", f.Generated()))
				return nil
			}
		}
	}
}

// Tick synthesizes and appends exactly one row.
func (f *Feed) Tick(ctx context.Context) error {
	ii := f.counter.Peek()
	if ii < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, ii)
	}

	rec := f.synth.Synthesize(ii)

	if err := f.table.Append(rec); err != nil {
		return fmt.Errorf("failed to append row %d: %w", ii, err)
	}

	if f.journal != nil {
		if err := f.journal.AppendRecord(ctx, rec); err != nil {
			return fmt.Errorf("failed to journal row %d: %w", ii, err)
		}
	}

	// The append is visible; only now may the next index be issued.
	f.counter.Advance()
	atomic.AddInt64(&f.generated, 1)

	f.logger.Debug("generated execution",
		zap.Int64("index", ii),
		zap.String("exec_id", rec.ExecID),
		zap.String("symbol", rec.Symbol),
		zap.String("side", rec.Side),
		zap.Int64("quantity", rec.Quantity),
		zap.Float64("price", rec.Price),
		zap.String("status", rec.ExecStatus),
	)

	return nil
}

// Generated returns the number of rows generated by this run.
func (f *Feed) Generated() int64 {
	return atomic.LoadInt64(&f.generated)
}
