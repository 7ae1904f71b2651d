package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ratesdesk/execfeed/internal/msg"
)

// Publisher drains unpublished journal rows to the feed topic.
// Rows are published strictly in index order: a failed publish stops the
// batch so the stream never skips ahead of a pending row.
type Publisher struct {
	store     *Store
	producer  *msg.Producer
	topic     string
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
}

// NewPublisher creates a new journal publisher
func NewPublisher(store *Store, producer *msg.Producer, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		store:     store,
		producer:  producer,
		topic:     topic,
		logger:    logger,
		interval:  250 * time.Millisecond,
		batchSize: 100,
	}
}

// Run starts the publisher loop
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PublishPending(ctx); err != nil {
				p.logger.Error("failed to publish batch", zap.Error(err))
				// Continue - will retry on next tick
			}
		}
	}
}

// PublishPending publishes one batch of unpublished rows
func (p *Publisher) PublishPending(ctx context.Context) error {
	pending, err := p.store.ListUnpublished(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list unpublished rows: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	published := 0

	for _, row := range pending {
		var m msg.ExecutionMsg
		if err := json.Unmarshal([]byte(row.PayloadJSON), &m); err != nil {
			// A corrupt payload would stall the stream forever; surface it.
			return fmt.Errorf("failed to unmarshal journaled row %d: %w", row.Index, err)
		}

		if err := p.producer.ProduceExecution(ctx, p.topic, m); err != nil {
			p.logger.Error("failed to produce execution",
				zap.Int64("index", row.Index),
				zap.String("exec_id", row.ExecID),
				zap.Error(err),
			)
			// Stop the batch: publishing later rows first would reorder
			// the stream. This row is retried on the next tick.
			break
		}

		if err := p.store.MarkPublished(ctx, row.Index, now); err != nil {
			p.logger.Error("failed to mark row as published",
				zap.Int64("index", row.Index),
				zap.Error(err),
			)
			// Worst case the row is republished (at-least-once).
			break
		}

		published++
		p.logger.Debug("published execution",
			zap.Int64("index", row.Index),
			zap.String("exec_id", row.ExecID),
			zap.String("event_id", row.EventID),
		)
	}

	if published > 0 {
		p.logger.Info("published journal batch",
			zap.Int("published", published),
			zap.Int("pending", len(pending)),
		)
	}

	return nil
}
