// Package config loads the immutable per-session configuration
// snapshot. Values come from a YAML file with environment variable
// overrides; nothing is re-read mid-session.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"solana-token-radar/internal/domain"
)

// Config is the complete session configuration.
type Config struct {
	Scan     ScanConfig               `yaml:"scan"`
	Profiles map[string]ProfileConfig `yaml:"profiles"`
	Sources  SourcesConfig            `yaml:"sources"`
	Security SecurityConfig           `yaml:"security"`
	Storage  StorageConfig            `yaml:"storage"`
	Alert    AlertConfig              `yaml:"alert"`
	Log      LogConfig                `yaml:"log"`
	Metrics  MetricsConfig            `yaml:"metrics"`
}

// ScanConfig controls the cycle scheduler.
type ScanConfig struct {
	IntervalSeconds       int    `yaml:"interval_seconds"`
	SessionRuntimeSeconds int    `yaml:"session_runtime_seconds"` // 0 means unbounded
	CycleDeadlineSeconds  int    `yaml:"cycle_deadline_seconds"`
	MaxInFlight           int    `yaml:"max_in_flight"`
	ActiveProfile         string `yaml:"active_profile"`
}

// ProfileConfig is one named weight profile as written in YAML.
// Weights are normalized at load, they do not have to sum to 1.
type ProfileConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// SourcesConfig enables and configures the market data adapters.
type SourcesConfig struct {
	DexScreener SourceConfig `yaml:"dexscreener"`
	Birdeye     SourceConfig `yaml:"birdeye"`
	PumpStream  SourceConfig `yaml:"pumpstream"`
}

// SourceConfig is per-adapter enablement and credentials.
type SourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// SecurityConfig configures the external token security assessor.
type SecurityConfig struct {
	BaseURL          string `yaml:"base_url"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	HighRiskTolerant bool   `yaml:"high_risk_tolerant"`
	MaxInFlight      int    `yaml:"max_in_flight"`
}

// StorageConfig selects the state and audit backends. An empty DSN
// selects the in-memory implementation.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// AlertConfig controls qualification and the cooldown gate.
type AlertConfig struct {
	ScoreThreshold  float64 `yaml:"score_threshold"`
	CooldownMinutes int     `yaml:"cooldown_minutes"`
}

// LogConfig controls log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads the YAML file at path, applies .env and environment
// overrides, fills defaults, and validates. A missing path yields a
// default config driven entirely by env vars.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	} else {
		// No file: keyless source enabled so an env-only setup works
		// out of the box.
		cfg.Sources.DexScreener.Enabled = true
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ScanInterval returns the cycle interval as a time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scan.IntervalSeconds) * time.Second
}

// SessionRuntime returns the total session runtime bound, zero when
// unbounded.
func (c *Config) SessionRuntime() time.Duration {
	return time.Duration(c.Scan.SessionRuntimeSeconds) * time.Second
}

// CycleDeadline returns the per-cycle deadline.
func (c *Config) CycleDeadline() time.Duration {
	return time.Duration(c.Scan.CycleDeadlineSeconds) * time.Second
}

// Cooldown returns the alert cooldown window.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Alert.CooldownMinutes) * time.Minute
}

// AssessTimeout returns the per-assessment timeout.
func (c *Config) AssessTimeout() time.Duration {
	return time.Duration(c.Security.TimeoutSeconds) * time.Second
}

// ActiveProfile builds the domain weight profile selected for the
// session.
func (c *Config) ActiveProfile() (domain.WeightProfile, error) {
	name := c.Scan.ActiveProfile
	pc, ok := c.Profiles[name]
	if !ok {
		return domain.WeightProfile{}, fmt.Errorf("config: unknown profile %q", name)
	}

	weights := make(map[domain.Factor]float64, len(pc.Weights))
	for k, v := range pc.Weights {
		factor := domain.Factor(k)
		known := false
		for _, f := range domain.Factors {
			if f == factor {
				known = true
				break
			}
		}
		if !known {
			return domain.WeightProfile{}, fmt.Errorf("config: profile %q: unknown factor %q", name, k)
		}
		weights[factor] = v
	}

	return domain.WeightProfile{Name: name, Weights: weights}, nil
}

// Validate checks that the configuration can support a session. It
// fails fast on the conditions that are fatal at startup: no enabled
// sources and a weight profile that cannot be normalized.
func (c *Config) Validate() error {
	if !c.Sources.DexScreener.Enabled && !c.Sources.Birdeye.Enabled && !c.Sources.PumpStream.Enabled {
		return fmt.Errorf("config: no sources enabled")
	}
	if c.Scan.IntervalSeconds <= 0 {
		return fmt.Errorf("config: scan interval must be positive")
	}
	if c.Scan.CycleDeadlineSeconds <= 0 {
		return fmt.Errorf("config: cycle deadline must be positive")
	}
	profile, err := c.ActiveProfile()
	if err != nil {
		return err
	}
	if _, err := profile.Normalized(); err != nil {
		return fmt.Errorf("config: profile %q: %w", profile.Name, err)
	}
	if c.Sources.Birdeye.Enabled && c.Sources.Birdeye.APIKey == "" {
		return fmt.Errorf("config: birdeye enabled without api key")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("BIRDEYE_API_KEY"); v != "" {
		cfg.Sources.Birdeye.APIKey = v
	}
	if v := os.Getenv("RUGCHECK_BASE_URL"); v != "" {
		cfg.Security.BaseURL = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Scan.IntervalSeconds == 0 {
		cfg.Scan.IntervalSeconds = 60
	}
	if cfg.Scan.CycleDeadlineSeconds == 0 {
		cfg.Scan.CycleDeadlineSeconds = 45
	}
	if cfg.Scan.MaxInFlight <= 0 {
		cfg.Scan.MaxInFlight = 4
	}
	if cfg.Scan.ActiveProfile == "" {
		cfg.Scan.ActiveProfile = "default"
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]ProfileConfig{}
	}
	if _, ok := cfg.Profiles["default"]; !ok {
		cfg.Profiles["default"] = ProfileConfig{Weights: map[string]float64{
			string(domain.FactorAgeRecency):     0.20,
			string(domain.FactorMomentum):       0.20,
			string(domain.FactorLiquidityDepth): 0.20,
			string(domain.FactorVolumeActivity): 0.15,
			string(domain.FactorHolderSpread):   0.10,
			string(domain.FactorSourceOverlap):  0.15,
		}}
	}
	if cfg.Security.TimeoutSeconds <= 0 {
		cfg.Security.TimeoutSeconds = 10
	}
	if cfg.Security.MaxInFlight <= 0 {
		cfg.Security.MaxInFlight = 4
	}
	if cfg.Alert.ScoreThreshold <= 0 {
		cfg.Alert.ScoreThreshold = 60
	}
	if cfg.Alert.CooldownMinutes <= 0 {
		cfg.Alert.CooldownMinutes = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
}
