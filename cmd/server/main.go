package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/contract"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/sink"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the relay lifecycle, and
// centralizes error reporting. This keeps deferred cleanup (transcript,
// BadgerDB) running on every exit path and keeps the wiring testable.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config validation: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Transcript sinks
	transcript, err := sink.NewTranscript(config.TranscriptPath)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		logger.Info("Closing transcript...")
		_ = transcript.Close()
	}()
	sinks := []contract.EventSink{transcript}

	if config.BadgerFilepath != "" {
		options := badger.DefaultOptions(config.BadgerFilepath)
		options.Logger = nil
		db, err := badger.Open(options)
		if err != nil {
			return exitRuntime, fmt.Errorf("archive opening failed: %w", err)
		}
		defer func() {
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		}()
		repository := repositories.NewMessageRepository(db, logger, config.ArchivePageSize)
		sinks = append(sinks, sink.NewArchive(repository, logger))
	}

	// 3. Optional moderation
	var censor runtime.CensorFunc
	if words := config.Words(); len(words) > 0 {
		replacement, err := config.ReplacementRune()
		if err != nil {
			return exitConfig, err
		}
		moderator, err := moderation.NewModerator(words, replacement)
		if err != nil {
			return exitRuntime, fmt.Errorf("moderation init failed: %w", err)
		}
		censor = moderator.Censor
		logger.Info("Moderation enabled", "words", len(words))
	}

	// 4. Core: registry, router, supervised workers
	stats := &observability.Stats{}
	registry := runtime.NewRegistry(config.MaxClients)
	router := runtime.NewRouter(logger, registry, stats, censor, sinks...)

	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	supervisor.Add(
		workers.NewTCPListener(logger, config.ListenAddr(), registry, router, supervisor, config.ReadBufferSize),
		workers.NewHeartbeat(logger, registry, stats, config.MetricInterval),
	)
	if config.WSPort > 0 {
		supervisor.Add(workers.NewWebSocketGateway(
			logger, config.WSListenAddr(), registry, router, supervisor, config.ReadBufferSize))
	}

	logger.Info("Starting relay", "addr", config.ListenAddr(), "max_clients", config.MaxClients)
	supervisor.Run(ctx)

	logger.Info("Relay stopped")
	return exitOK, nil
}
