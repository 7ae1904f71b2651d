package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ratesdesk/execfeed/internal/logging"
	"github.com/ratesdesk/execfeed/internal/msg"
	"github.com/ratesdesk/execfeed/internal/synth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <duration_seconds> [brokers]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s 30 127.0.0.1:9092\n", os.Args[0])
		os.Exit(1)
	}

	var durationSeconds int
	if _, err := fmt.Sscanf(os.Args[1], "%d", &durationSeconds); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid duration: %v\n", err)
		os.Exit(1)
	}

	brokers := "127.0.0.1:9092"
	if len(os.Args) >= 3 {
		brokers = os.Args[2]
	}

	logger, err := logging.NewLogger("feed-verifier", "info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	brokerList := msg.ParseBrokers(brokers)

	logger.Info("starting feed verifier",
		zap.Int("duration_seconds", durationSeconds),
		zap.Strings("brokers", brokerList),
	)

	// Create consumer
	consumer, err := msg.NewConsumer(brokerList, "feed-verifier-v1", []string{msg.TopicExecutionsFeed}, logger)
	if err != nil {
		logger.Fatal("failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	var (
		consumed     int64
		violations   int64
		firstIndex   = int64(-1)
		nextIndex    = int64(-1)
		statusCounts = make(map[string]int64)
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(durationSeconds)*time.Second)
	defer cancel()

	err = consumer.Run(ctx, func(ctx context.Context, rec msg.Record) error {
		var m msg.ExecutionMsg
		if err := json.Unmarshal(rec.Value, &m); err != nil {
			logger.Warn("failed to unmarshal execution", zap.Error(err))
			violations++
			return nil // Continue processing
		}

		consumed++
		statusCounts[m.Record.ExecStatus]++

		// Sequence check: after the first row, every index must be
		// exactly one past the previous row's.
		if firstIndex < 0 {
			firstIndex = m.Record.Index
		} else if m.Record.Index != nextIndex {
			logger.Error("sequence violation",
				zap.Int64("index", m.Record.Index),
				zap.Int64("expected", nextIndex),
			)
			violations++
		}
		nextIndex = m.Record.Index + 1

		if err := synth.Validate(m.Record); err != nil {
			logger.Error("derivation violation",
				zap.Int64("index", m.Record.Index),
				zap.Error(err),
			)
			violations++
		}

		logger.Debug("consumed execution",
			zap.Int64("index", m.Record.Index),
			zap.String("exec_id", m.Record.ExecID),
			zap.String("event_id", m.EventID),
			zap.String("status", m.Record.ExecStatus),
		)

		return nil
	})
	if err != nil && err != context.DeadlineExceeded && ctx.Err() == nil {
		logger.Error("consumer stopped early", zap.Error(err))
	}

	logger.Info("verifier completed",
		zap.Int64("consumed", consumed),
		zap.Int64("violations", violations),
		zap.Int64("first_index", firstIndex),
		zap.Int64("last_index", nextIndex-1),
	)

	fmt.Printf("\n=== Feed Verifier Summary ===\n")
	fmt.Printf("Consumed: %d\n", consumed)
	fmt.Printf("Violations: %d\n", violations)
	if firstIndex >= 0 {
		fmt.Printf("Index range: %d..%d\n", firstIndex, nextIndex-1)
	}
	for _, status := range []string{"FILLED", "PARTIAL", "REJECTED"} {
		if consumed > 0 {
			fmt.Printf("%s: %d (%.1f%%)\n", status, statusCounts[status],
				100*float64(statusCounts[status])/float64(consumed))
		}
	}
	fmt.Printf("\n")

	if violations > 0 {
		os.Exit(1)
	}
}
