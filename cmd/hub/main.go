package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relay-hub/auth"
	"relay-hub/infrastructure/httpapi"
	"relay-hub/infrastructure/ws"
	"relay-hub/internal"
	"relay-hub/moderation"
	"relay-hub/observability"
	"relay-hub/repositories"
	"relay-hub/repositories/storage"
	"relay-hub/runtime"
	"relay-hub/runtime/workers"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle and
// centralizes error reporting, so every defer executes before the
// process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	searchIndex, err := repositories.NewSearchIndex(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = searchIndex.Close()
	}()

	// 3. Core components
	monitor := observability.NewMonitor(log)
	messageRepository := repositories.NewMessageRepository(db, log)
	callRepository := repositories.NewCallRepository(db, log)
	recorder := storage.NewRecorder(log, messageRepository, callRepository,
		searchIndex, monitor, config.RecorderBufferSize)

	moderator, err := buildModerator(config)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	presence := runtime.NewPresence()
	groups := runtime.NewGroups()
	router := runtime.NewRouter(log, presence, groups, recorder, moderator, monitor)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers
	sup := workers.NewSupervisor(log)
	sup.Add(
		recorder,
		workers.NewTelemetryWorker(log, monitor, config.TelemetryInterval),
		workers.NewStorageGCWorker(log, db, config.GCInterval),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP server: upgrade endpoint + read-side API
	verifier := auth.NewVerifier(config.JwtSecret)
	wsOptions := ws.Options{
		SendBufferSize: config.SendBufferSize,
		MaxMessageSize: config.MaxMessageSize,
		WriteTimeout:   config.WriteTimeout,
		PongTimeout:    config.PongTimeout,
	}
	upgrade := ws.NewHandler(log, verifier, router, presence, groups, monitor, wsOptions, ctx)
	api := httpapi.NewAPI(log, verifier, messageRepository, callRepository,
		searchIndex, monitor, config.HistoryLimit)

	server := &http.Server{
		Addr:    config.Addr(),
		Handler: api.Routes(upgrade),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting hub", "address", config.Addr(), "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Forced server close", "error", err)
	}

	// The recorder flushes its queue when the supervised context ends
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}

func buildModerator(config internal.Config) (*moderation.Moderator, error) {
	words := config.Words()
	if len(words) == 0 {
		return nil, nil
	}
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	return moderation.NewModerator(words, replacement)
}
