package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"example.com/candlestick-detector/internal/config"
	"example.com/candlestick-detector/internal/corpus"
	"example.com/candlestick-detector/internal/history"
	"example.com/candlestick-detector/internal/httpapi"
	"example.com/candlestick-detector/internal/metrics"
	"example.com/candlestick-detector/internal/scheduler"
	"example.com/candlestick-detector/internal/session"
)

func main() {
	configPath := flag.String("config", "config.yaml", "")
	addr := flag.String("addr", "", "")
	examplesDir := flag.String("examples-dir", "", "")
	corsOrigins := flag.String("cors-origins", "", "")
	flag.Parse()

	// .env is optional and never overrides real environment variables.
	_ = godotenv.Load()

	logger := newLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *examplesDir != "" {
		cfg.Examples.Dir = *examplesDir
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation")
	}
	logger = newLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewStore(logger)

	library := corpus.NewLibrary(cfg.Examples.Dir, logger)
	if err := library.Rescan(); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Examples.Dir).Msg("example corpus scan failed, continuing without examples")
	}

	// Configured persistence that fails to open degrades to noop with a
	// warning rather than silently pretending the history survives.
	var recorder history.Recorder
	if cfg.History.SQLitePath != "" {
		rec, err := history.NewSQLiteRecorder(cfg.History.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("sqlite recorder unavailable, history disabled")
			recorder = history.NewNoopRecorder()
		} else {
			recorder = rec
			defer rec.Close()
		}
	} else {
		recorder = history.NewMemoryRecorder(0)
	}

	m := metrics.New()

	sched := scheduler.New(sessions, library, m, cfg.SessionTTL(), logger)
	if err := sched.RegisterAll(cfg.Schedule.SessionSweepCron, cfg.Schedule.CorpusRescanCron); err != nil {
		logger.Fatal().Err(err).Msg("register maintenance jobs")
	}
	sched.Start()
	defer sched.Stop()

	api := httpapi.New(sessions, library, recorder, m, logger)
	api.AllowedOrigins = httpapi.ParseAllowedOrigins(*corsOrigins)
	api.MaxUploadBytes = cfg.Server.MaxUploadBytes

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("examples_dir", cfg.Examples.Dir).
		Str("version", httpapi.Version).
		Msg("http listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server")
	}
	logger.Info().Msg("shutdown complete")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
