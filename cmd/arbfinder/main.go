package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arbfinder/exchange/restclient"
	"arbfinder/internal/arbfinder"
	"arbfinder/internal/config"
	"arbfinder/internal/currency"
	"arbfinder/internal/metrics"
	"arbfinder/internal/report"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Logging)
	log.Info().Msg("starting arbfinder - cyclic arbitrage detection")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("application error")
	}

	log.Info().Msg("arbfinder shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()
	if cfg.Metrics.Enabled {
		if err := m.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			m.Shutdown(shutdownCtx)
		}()
		log.Info().Int("port", cfg.Metrics.Port).Msg("metrics server started")
	}

	sinks := []report.Sink{report.NewTextSink()}
	if cfg.Report.SQLiteEnabled {
		sqliteSink, err := report.NewSQLiteSink(cfg.Report.SQLitePath)
		if err != nil {
			return err
		}
		defer sqliteSink.Close()
		sinks = append(sinks, sqliteSink)
		log.Info().Str("path", cfg.Report.SQLitePath).Msg("sqlite audit sink initialized")
	}
	sink := multiSink(sinks)

	candidates := make([]currency.Currency, len(cfg.Analysis.Candidates))
	for i, c := range cfg.Analysis.Candidates {
		candidates[i] = currency.Normalize(c)
	}

	tradedVolumeUSD, err := decimal.NewFromString(cfg.Analysis.TradedVolumeUSD)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runAnalysisLoop(gCtx, cfg, candidates, tradedVolumeUSD, sink, m)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runAnalysisLoop(ctx context.Context, cfg *config.Config, candidates []currency.Currency, tradedVolumeUSD decimal.Decimal, sink report.Sink, m *metrics.Metrics) error {
	if cfg.Analysis.Interval == "" {
		return runOnce(ctx, cfg, candidates, tradedVolumeUSD, sink, m)
	}

	interval, err := time.ParseDuration(cfg.Analysis.Interval)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := runOnce(ctx, cfg, candidates, tradedVolumeUSD, sink, m); err != nil {
			log.Error().Err(err).Msg("analysis run failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func runOnce(ctx context.Context, cfg *config.Config, candidates []currency.Currency, tradedVolumeUSD decimal.Decimal, sink report.Sink, m *metrics.Metrics) error {
	client := restclient.New(cfg.Exchange.BaseURL)

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	outcome, err := arbfinder.Analyze(reqCtx, client, candidates, tradedVolumeUSD, sink, m)
	if err != nil {
		return err
	}

	log.Info().Str("status", outcome.Status.Message()).Msg("analysis complete")
	return nil
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// multiSink fans a report.Outcome out to every configured sink.
type multiSinkT []report.Sink

func multiSink(sinks []report.Sink) report.Sink {
	return multiSinkT(sinks)
}

func (s multiSinkT) Report(o report.Outcome) error {
	var firstErr error
	for _, sink := range s {
		if err := sink.Report(o); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
