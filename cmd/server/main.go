package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/token-ledger-system/internal/api"
	"github.com/sheikh-saqib/token-ledger-system/internal/config"
	"github.com/sheikh-saqib/token-ledger-system/internal/events"
	kafkaevents "github.com/sheikh-saqib/token-ledger-system/internal/events/kafka"
	eventlog "github.com/sheikh-saqib/token-ledger-system/internal/events/memory"
	pgevents "github.com/sheikh-saqib/token-ledger-system/internal/events/postgres"
	"github.com/sheikh-saqib/token-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/token-ledger-system/internal/ledger"
	boltstore "github.com/sheikh-saqib/token-ledger-system/internal/storage/bolt"
	memstore "github.com/sheikh-saqib/token-ledger-system/internal/storage/memory"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("opening store")
	}
	defer cleanup()

	log := eventlog.NewLog()
	sink, sinkCleanup, err := buildSink(cfg, log)
	if err != nil {
		logger.Fatal().Err(err).Msg("building notification sinks")
	}
	defer sinkCleanup()

	tokenLedger, err := ledger.New(store, sink, ledger.Config{
		Name:          cfg.TokenName,
		Symbol:        cfg.TokenSymbol,
		Decimals:      cfg.TokenDecimals,
		InitialSupply: cfg.InitialSupply,
		InitialHolder: cfg.InitialHolder,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("constructing ledger")
	}

	logger.Info().
		Str("name", cfg.TokenName).
		Str("symbol", cfg.TokenSymbol).
		Uint64("supply", cfg.InitialSupply).
		Str("holder", cfg.InitialHolder.String()).
		Str("store", cfg.StoreBackend).
		Msg("ledger ready")

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(tokenLedger, log, logger, cfg.RateLimit),
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("stopped")
}

func buildStore(cfg config.Config) (interfaces.LedgerStore, func(), error) {
	if cfg.StoreBackend == "bolt" {
		store, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return memstore.NewStore(), func() {}, nil
}

// buildSink composes the in-process log with the optional Kafka and Postgres
// sinks. The log always comes first so local reads stay consistent even when
// a downstream sink fails.
func buildSink(cfg config.Config, log *eventlog.Log) (interfaces.NotificationSink, func(), error) {
	sinks := []interfaces.NotificationSink{log}
	cleanups := []func(){}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafkaevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, publisher)
		cleanups = append(cleanups, func() { publisher.Close() })
	}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, pgevents.NewStore(db))
		cleanups = append(cleanups, func() { db.Close() })
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if len(sinks) == 1 {
		return log, cleanup, nil
	}
	return events.NewFanout(sinks...), cleanup, nil
}
