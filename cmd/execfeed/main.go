package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/ratesdesk/execfeed/internal/config"
	"github.com/ratesdesk/execfeed/internal/feed"
	"github.com/ratesdesk/execfeed/internal/journal"
	"github.com/ratesdesk/execfeed/internal/logging"
	"github.com/ratesdesk/execfeed/internal/msg"
	"github.com/ratesdesk/execfeed/internal/observability"
	"github.com/ratesdesk/execfeed/internal/synth"
	"github.com/ratesdesk/execfeed/internal/table"
)

func main() {
	cfg := config.LoadConfig("execfeed")

	var (
		cadenceMs = flag.Int("cadence-ms", cfg.CadenceMs, "Tick period in milliseconds (one row per tick)")
		maxRows   = flag.Int64("max-rows", cfg.MaxRows, "Stop after this many rows (0 = run until stopped)")
		brokers   = flag.String("brokers", cfg.KafkaBrokers, "Kafka broker addresses")
		topic     = flag.String("topic", cfg.FeedTopic, "Topic to publish executions to")
		dbPath    = flag.String("journal", cfg.JournalPath, "Path to the sqlite feed journal")
		noPublish = flag.Bool("no-publish", false, "Generate rows without publishing to Kafka")
	)
	flag.Parse()

	logger, err := logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting execfeed service",
		zap.Int("cadence_ms", *cadenceMs),
		zap.Int64("max_rows", *maxRows),
		zap.String("topic", *topic),
		zap.String("journal", *dbPath),
		zap.Bool("no_publish", *noPublish),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("http_port", cfg.HTTPPort),
	)

	// Open the journal and resume the counter past any journaled rows.
	store, err := journal.Open(*dbPath)
	if err != nil {
		logger.Fatal("failed to open feed journal", zap.Error(err))
	}
	defer store.Close()

	lastIndex, err := store.LastIndex(context.Background())
	if err != nil {
		logger.Fatal("failed to read journal last index", zap.Error(err))
	}
	startIndex := lastIndex + 1
	if startIndex > 0 {
		logger.Info("resuming from journal", zap.Int64("next_index", startIndex))
	}

	counter, err := feed.NewCounter(startIndex)
	if err != nil {
		logger.Fatal("invalid start index", zap.Error(err))
	}

	tbl := table.NewAt(startIndex)
	synthesizer := synth.NewSynthesizer(rand.New(rand.NewSource(time.Now().UnixNano())))

	// Create health checker
	healthChecker := observability.NewHealthChecker(logger)
	healthChecker.SetRowCounter(tbl)

	// Kafka producer and journal publisher
	var producer *msg.Producer
	var publisher *journal.Publisher
	if !*noPublish {
		brokerList := msg.ParseBrokers(*brokers)
		producer, err = msg.NewProducer(brokerList, logger)
		if err != nil {
			logger.Fatal("failed to create producer", zap.Error(err))
		}
		defer producer.Close()
		healthChecker.SetKafkaReady(true)

		publisher = journal.NewPublisher(store, producer, *topic, logger)
	}

	// Create gRPC server
	grpcServer := grpc.NewServer()
	healthChecker.RegisterGRPC(grpcServer)

	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		logger.Fatal("failed to listen on gRPC port", zap.Error(err))
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			grpcErrCh <- err
		}
	}()

	// Start HTTP health server
	httpErrCh := make(chan error, 1)
	go func() {
		if err := healthChecker.StartHTTPServer(cfg.HTTPAddr()); err != nil && err != http.ErrServerClosed {
			httpErrCh <- err
		}
	}()

	// Start the journal publisher
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisherErrCh := make(chan error, 1)
	if publisher != nil {
		go func() {
			if err := publisher.Run(ctx); err != nil && err != context.Canceled {
				publisherErrCh <- err
			}
		}()
	}

	// Start the feed loop
	f := feed.New(counter, synthesizer, tbl, store, time.Duration(*cadenceMs)*time.Millisecond, *maxRows, logger)
	healthChecker.SetFeedReady(true)

	feedErrCh := make(chan error, 1)
	go func() {
		err := f.Run(ctx)
		if err != nil && err != context.Canceled {
			feedErrCh <- err
			return
		}
		feedErrCh <- nil
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-feedErrCh:
		if err != nil {
			logger.Error("feed stopped with error", zap.Error(err))
			exitCode = 1
		} else {
			logger.Info("feed completed")
		}
	case err := <-grpcErrCh:
		logger.Error("gRPC server error", zap.Error(err))
		exitCode = 1
	case err := <-httpErrCh:
		logger.Error("HTTP server error", zap.Error(err))
		exitCode = 1
	case err := <-publisherErrCh:
		logger.Error("publisher error", zap.Error(err))
		exitCode = 1
	}

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	healthChecker.SetFeedReady(false)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Drain whatever the journal still holds before closing the producer.
	if publisher != nil {
		if err := publisher.PublishPending(shutdownCtx); err != nil {
			logger.Error("final journal drain failed", zap.Error(err))
		}
	}

	if err := healthChecker.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down health checker", zap.Error(err))
	}

	grpcServer.GracefulStop()

	logger.Info("execfeed service stopped",
		zap.Int64("rows_generated", f.Generated()),
		zap.Int64("next_index", counter.Peek()),
	)

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
