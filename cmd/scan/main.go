// Package main runs a single scan cycle and prints the audit records
// as JSON. Useful for testing a config or a weight profile without
// starting a session.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"solana-token-radar/internal/aggregate"
	"solana-token-radar/internal/alert"
	"solana-token-radar/internal/config"
	"solana-token-radar/internal/scheduler"
	"solana-token-radar/internal/scoring"
	"solana-token-radar/internal/security"
	"solana-token-radar/internal/source"
	"solana-token-radar/internal/storage/memory"
)

func main() {
	configPath := flag.String("config", os.Getenv("RADAR_CONFIG"), "Path to YAML config file")
	profileName := flag.String("profile", "", "Weight profile override")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}
	if *profileName != "" {
		cfg.Scan.ActiveProfile = *profileName
	}

	ctx := context.Background()

	var adapters []source.Adapter
	if cfg.Sources.DexScreener.Enabled {
		adapters = append(adapters, source.NewDexScreener(log, cfg.Sources.DexScreener.BaseURL))
	}
	if cfg.Sources.Birdeye.Enabled {
		adapters = append(adapters, source.NewBirdeye(log, cfg.Sources.Birdeye.BaseURL, cfg.Sources.Birdeye.APIKey))
	}
	if cfg.Sources.PumpStream.Enabled {
		log.Warn().Msg("pumpstream is a push feed, skipping it for a one-shot scan")
	}

	profile, err := cfg.ActiveProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("weight profile invalid")
	}
	engine, err := scoring.NewEngine(scoring.DefaultCurves(), profile)
	if err != nil {
		log.Fatal().Err(err).Msg("scoring engine setup failed")
	}

	states := memory.NewStateStore()
	audits := memory.NewAuditStore()

	sched := scheduler.New(scheduler.Config{
		Interval:          cfg.ScanInterval(),
		CycleDeadline:     cfg.CycleDeadline(),
		MaxInFlight:       cfg.Scan.MaxInFlight,
		AssessMaxInFlight: cfg.Security.MaxInFlight,
		AssessTimeout:     cfg.AssessTimeout(),
		HighRiskTolerant:  cfg.Security.HighRiskTolerant,
		ScoreThreshold:    cfg.Alert.ScoreThreshold,
	}, scheduler.Deps{
		Adapters: adapters,
		Merger:   aggregate.NewMerger(aggregate.DefaultPriority()),
		Assessor: security.NewRugCheck(log, cfg.Security.BaseURL, security.WithTimeout(cfg.AssessTimeout())),
		Engine:   engine,
		States:   states,
		Audits:   audits,
		Gate:     alert.NewGate(states, cfg.Cooldown()),
		Sink:     alert.NewLogSink(log),
		Log:      log,
	})

	res, err := sched.RunCycle(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scan failed")
	}

	records, err := audits.GetByCycle(ctx, res.CycleID)
	if err != nil {
		log.Fatal().Err(err).Msg("audit readback failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		log.Fatal().Err(err).Msg("encode failed")
	}

	log.Info().
		Str("state", res.State.String()).
		Int("merged", res.Summary.Merged).
		Int("scored", res.Summary.Scored).
		Int("alerted", res.Summary.Alerted).
		Msg("scan finished")
}
