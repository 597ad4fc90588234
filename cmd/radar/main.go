// Package main runs the token radar as a long-lived service: scan
// cycles at a fixed interval, Prometheus metrics, and a health
// endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"solana-token-radar/internal/aggregate"
	"solana-token-radar/internal/alert"
	"solana-token-radar/internal/config"
	"solana-token-radar/internal/observability"
	"solana-token-radar/internal/scheduler"
	"solana-token-radar/internal/scoring"
	"solana-token-radar/internal/security"
	"solana-token-radar/internal/source"
	"solana-token-radar/internal/storage"
	chstore "solana-token-radar/internal/storage/clickhouse"
	"solana-token-radar/internal/storage/memory"
	"solana-token-radar/internal/storage/migrations"
	pgstore "solana-token-radar/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", os.Getenv("RADAR_CONFIG"), "Path to YAML config file")
	flag.Parse()

	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("configuration invalid")
	}

	log := setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	states, closeStates, err := buildStateStore(ctx, log, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("state store unavailable")
	}
	defer closeStates()

	if err := states.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("state store unreachable")
	}

	audits, closeAudits, err := buildAuditStore(ctx, log, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("audit store unavailable")
	}
	defer closeAudits()

	adapters, closeAdapters, err := buildAdapters(ctx, log, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("source setup failed")
	}
	defer closeAdapters()

	profile, err := cfg.ActiveProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("weight profile invalid")
	}
	engine, err := scoring.NewEngine(scoring.DefaultCurves(), profile)
	if err != nil {
		log.Fatal().Err(err).Msg("scoring engine setup failed")
	}

	assessor := security.NewRugCheck(log, cfg.Security.BaseURL,
		security.WithTimeout(cfg.AssessTimeout()))

	sched := scheduler.New(scheduler.Config{
		Interval:          cfg.ScanInterval(),
		SessionRuntime:    cfg.SessionRuntime(),
		CycleDeadline:     cfg.CycleDeadline(),
		MaxInFlight:       cfg.Scan.MaxInFlight,
		AssessMaxInFlight: cfg.Security.MaxInFlight,
		AssessTimeout:     cfg.AssessTimeout(),
		HighRiskTolerant:  cfg.Security.HighRiskTolerant,
		ScoreThreshold:    cfg.Alert.ScoreThreshold,
	}, scheduler.Deps{
		Adapters: adapters,
		Merger:   aggregate.NewMerger(aggregate.DefaultPriority()),
		Assessor: assessor,
		Engine:   engine,
		States:   states,
		Audits:   audits,
		Gate:     alert.NewGate(states, cfg.Cooldown()),
		Sink:     alert.NewLogSink(log),
		Log:      log,
	})

	srv := startHTTP(log, cfg.Metrics.Addr, sched)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("profile", engine.ProfileName()).
		Int("sources", len(adapters)).
		Dur("interval", cfg.ScanInterval()).
		Msg("radar session starting")

	if err := sched.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("session aborted")
	}
	log.Info().Msg("radar session ended")
}

func setupLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Format == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func buildStateStore(ctx context.Context, log zerolog.Logger, cfg *config.Config) (storage.StateStore, func(), error) {
	if cfg.Storage.PostgresDSN == "" {
		log.Warn().Msg("no postgres dsn, token state will not survive restarts")
		return memory.NewStateStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pgstore.NewStateStore(pool), pool.Close, nil
}

func buildAuditStore(ctx context.Context, log zerolog.Logger, cfg *config.Config) (storage.AuditStore, func(), error) {
	if cfg.Storage.ClickhouseDSN == "" {
		log.Warn().Msg("no clickhouse dsn, audit records held in memory only")
		return memory.NewAuditStore(), func() {}, nil
	}

	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return chstore.NewAuditStore(conn), func() { conn.Close() }, nil
}

func buildAdapters(ctx context.Context, log zerolog.Logger, cfg *config.Config) ([]source.Adapter, func(), error) {
	var adapters []source.Adapter
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Sources.DexScreener.Enabled {
		adapters = append(adapters, source.NewDexScreener(log, cfg.Sources.DexScreener.BaseURL))
	}
	if cfg.Sources.Birdeye.Enabled {
		adapters = append(adapters, source.NewBirdeye(log, cfg.Sources.Birdeye.BaseURL, cfg.Sources.Birdeye.APIKey))
	}
	if cfg.Sources.PumpStream.Enabled {
		psCfg := source.DefaultPumpStreamConfig(cfg.Sources.PumpStream.BaseURL)
		ps, err := source.NewPumpStream(ctx, log, psCfg)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = ps.Close() })
		adapters = append(adapters, ps)
	}

	return adapters, closeAll, nil
}

func startHTTP(log zerolog.Logger, addr string, sched *scheduler.Scheduler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"state":  sched.State().String(),
		})
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}
