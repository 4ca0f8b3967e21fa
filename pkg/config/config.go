package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the complete engine configuration.
type Config struct {
	Profile     string            `mapstructure:"profile"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	Vectorstore VectorstoreConfig `mapstructure:"vectorstore"`
	AutoCapture AutoCaptureConfig `mapstructure:"auto_capture"`
	AutoRecall  AutoRecallConfig  `mapstructure:"auto_recall"`
	Sessions    SessionsConfig    `mapstructure:"sessions"`
	Tiers       TiersConfig       `mapstructure:"tiers"`
	Decay       DecayConfig       `mapstructure:"decay"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Injection   InjectionConfig   `mapstructure:"injection"`
	Context     ContextConfig     `mapstructure:"context"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	Path           string        `mapstructure:"path"`
	BackupInterval time.Duration `mapstructure:"backup_interval"`
	MaxBackups     int           `mapstructure:"max_backups"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console, json
}

// EmbeddingConfig selects and parameterizes the embedding provider.
// internal/embedding resolves this into an embedding.Provider; the rest
// of the engine never talks to the provider directly.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // "ollama", ...
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	BaseURL    string `mapstructure:"base_url"`
	CacheSize  int    `mapstructure:"cache_size"` // embedding-cache entries, 0 disables
}

// VectorstoreConfig selects the dense-vector backend.
type VectorstoreConfig struct {
	// PreferNative attempts to load the sqlite-vec extension; on failure
	// (or when false) the engine falls back to the in-process cosine scan.
	PreferNative bool `mapstructure:"prefer_native"`
}

// AutoCaptureConfig is the global auto-capture kill-switch plus defaults.
type AutoCaptureConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	MinLength    int     `mapstructure:"min_length"`
	MaxLength    int     `mapstructure:"max_length"`
	MaxCaptures  int     `mapstructure:"max_captures"`
	DedupeCosine float64 `mapstructure:"dedupe_cosine"`
}

// AutoRecallConfig accepts both a bare bool and the object shape
// (backward-compat): when only Enabled is set, the remaining fields
// inherit from Injection via Resolve.
type AutoRecallConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	MinScore *float64       `mapstructure:"min_score"`
	MaxItems *int           `mapstructure:"max_items"`
	Budgets  *BudgetsConfig `mapstructure:"budgets"`
}

// autoRecallBoolHookFunc lets a bare `auto_recall: true|false` YAML
// scalar decode into AutoRecallConfig{Enabled: v}, the backward-compat
// shape spec.md §6 requires alongside the full object form.
func autoRecallBoolHookFunc(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(AutoRecallConfig{}) || from.Kind() != reflect.Bool {
		return data, nil
	}
	return AutoRecallConfig{Enabled: data.(bool)}, nil
}

// ResolvedAutoRecall is AutoRecallConfig with all optional fields filled.
type ResolvedAutoRecall struct {
	Enabled  bool
	MinScore float64
	MaxItems int
	Budgets  BudgetsConfig
}

// Resolve normalizes AutoRecallConfig against the engine-wide injection
// defaults.
func (a AutoRecallConfig) Resolve(inj InjectionConfig) ResolvedAutoRecall {
	r := ResolvedAutoRecall{
		Enabled:  a.Enabled,
		MinScore: inj.MinScore,
		MaxItems: inj.MaxItems,
		Budgets:  inj.Budgets,
	}
	if a.MinScore != nil {
		r.MinScore = *a.MinScore
	}
	if a.MaxItems != nil {
		r.MaxItems = *a.MaxItems
	}
	if a.Budgets != nil {
		r.Budgets = *a.Budgets
	}
	return r
}

// SessionsConfig holds per-session-type overrides.
type SessionsConfig struct {
	Main    SessionProfile `mapstructure:"main"`
	Cron    SessionProfile `mapstructure:"cron"`
	Spawned SessionProfile `mapstructure:"spawned"`
}

// SessionProfile is the per-session-type override bundle.
type SessionProfile struct {
	AutoCapture  bool   `mapstructure:"auto_capture"`
	AutoInject   bool   `mapstructure:"auto_inject"`
	DefaultTier  string `mapstructure:"default_tier"`
	DecayProfile string `mapstructure:"decay_profile"`
}

// TiersConfig drives the decay and promotion engines' thresholds.
type TiersConfig struct {
	Hot  HotTierConfig  `mapstructure:"hot"`
	Warm WarmTierConfig `mapstructure:"warm"`
	Cold ColdTierConfig `mapstructure:"cold"`
}

// HotTierConfig documents the hot-tier TTL; authoritative per-type
// values live in DecayConfig.Default/Overrides.
type HotTierConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// WarmTierConfig documents the warm-tier demotion window.
type WarmTierConfig struct {
	DemotionDays int `mapstructure:"demotion_days"`
}

// ColdTierConfig drives the promotion engine.
type ColdTierConfig struct {
	PromotionUses int `mapstructure:"promotion_uses"`
	PromotionDays int `mapstructure:"promotion_days"`
}

// DecayConfig drives the decay engine.
type DecayConfig struct {
	IntervalHours int                 `mapstructure:"interval_hours"`
	MinRunHours   int                 `mapstructure:"min_run_hours"`
	Profile       string              `mapstructure:"profile"`
	Default       TypeTTLs            `mapstructure:"default"`
	Overrides     map[string]TypeTTLs `mapstructure:"overrides"`
}

// TypeTTLs holds TTL-hours for each tier edge. A nil pointer means the
// memory never demotes out of that tier.
type TypeTTLs struct {
	HotTTLHours  *float64 `mapstructure:"hot_ttl_hours"`
	WarmTTLHours *float64 `mapstructure:"warm_ttl_hours"`
	ColdTTLHours *float64 `mapstructure:"cold_ttl_hours"`
}

// ScoringConfig holds the scorer's component weights.
type ScoringConfig struct {
	Similarity float64 `mapstructure:"similarity"`
	Recency    float64 `mapstructure:"recency"`
	Frequency  float64 `mapstructure:"frequency"`
}

// BudgetsConfig holds the allocator's per-tier fractions.
type BudgetsConfig struct {
	Pinned  float64 `mapstructure:"pinned"`
	Hot     float64 `mapstructure:"hot"`
	Warm    float64 `mapstructure:"warm"`
	Cold    float64 `mapstructure:"cold"`
	Archive float64 `mapstructure:"archive"`
}

// InjectionConfig holds allocator knobs.
type InjectionConfig struct {
	MaxItems int           `mapstructure:"max_items"`
	MinScore float64       `mapstructure:"min_score"`
	Budgets  BudgetsConfig `mapstructure:"budgets"`
}

// ContextConfig holds the current-context default TTL.
type ContextConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// RateLimitConfig throttles concurrent embedding-provider calls.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// DefaultConfig returns configuration with the documented default values.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".mycelicmemory")

	hot := 72.0
	warm := 24.0 * 14
	cold := 24.0 * 90

	return &Config{
		Profile: "default",
		Database: DatabaseConfig{
			Path:           filepath.Join(configDir, "memories.db"),
			BackupInterval: 24 * time.Hour,
			MaxBackups:     7,
			AutoMigrate:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Model:      "nomic-embed-text",
			Dimensions: 768,
			BaseURL:    "http://localhost:11434",
			CacheSize:  10000,
		},
		Vectorstore: VectorstoreConfig{
			PreferNative: true,
		},
		AutoCapture: AutoCaptureConfig{
			Enabled:      true,
			MinLength:    10,
			MaxLength:    500,
			MaxCaptures:  3,
			DedupeCosine: 0.95,
		},
		AutoRecall: AutoRecallConfig{
			Enabled: true,
		},
		Sessions: SessionsConfig{
			Main:    SessionProfile{AutoCapture: true, AutoInject: true, DefaultTier: "hot"},
			Cron:    SessionProfile{AutoCapture: false, AutoInject: false, DefaultTier: "warm"},
			Spawned: SessionProfile{AutoCapture: true, AutoInject: true, DefaultTier: "hot"},
		},
		Tiers: TiersConfig{
			Hot:  HotTierConfig{TTLHours: 72},
			Warm: WarmTierConfig{DemotionDays: 14},
			Cold: ColdTierConfig{PromotionUses: 3, PromotionDays: 2},
		},
		Decay: DecayConfig{
			IntervalHours: 6,
			MinRunHours:   1,
			Profile:       "thorough",
			Default: TypeTTLs{
				HotTTLHours:  &hot,
				WarmTTLHours: &warm,
				ColdTTLHours: &cold,
			},
			Overrides: map[string]TypeTTLs{},
		},
		Scoring: ScoringConfig{
			Similarity: 0.5,
			Recency:    0.3,
			Frequency:  0.2,
		},
		Injection: InjectionConfig{
			MaxItems: 20,
			MinScore: 0,
			Budgets: BudgetsConfig{
				Pinned: 0.25, Hot: 0.45, Warm: 0.25, Cold: 0.05, Archive: 0,
			},
		},
		Context: ContextConfig{
			TTLHours: 4,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
	}
}

// Load loads configuration from YAML with fallback to defaults.
// Searches ./config.yaml, ~/.mycelicmemory/config.yaml, /etc/mycelicmemory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	homeDir, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(homeDir, ".mycelicmemory"))
	v.AddConfigPath("/etc/mycelicmemory")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		autoRecallBoolHookFunc,
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("profile", d.Profile)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.backup_interval", d.Database.BackupInterval.String())
	v.SetDefault("database.max_backups", d.Database.MaxBackups)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.base_url", d.Embedding.BaseURL)
	v.SetDefault("embedding.cache_size", d.Embedding.CacheSize)

	v.SetDefault("vectorstore.prefer_native", d.Vectorstore.PreferNative)

	v.SetDefault("auto_capture.enabled", d.AutoCapture.Enabled)
	v.SetDefault("auto_capture.min_length", d.AutoCapture.MinLength)
	v.SetDefault("auto_capture.max_length", d.AutoCapture.MaxLength)
	v.SetDefault("auto_capture.max_captures", d.AutoCapture.MaxCaptures)
	v.SetDefault("auto_capture.dedupe_cosine", d.AutoCapture.DedupeCosine)

	v.SetDefault("auto_recall.enabled", d.AutoRecall.Enabled)

	v.SetDefault("sessions.main.auto_capture", d.Sessions.Main.AutoCapture)
	v.SetDefault("sessions.main.auto_inject", d.Sessions.Main.AutoInject)
	v.SetDefault("sessions.main.default_tier", d.Sessions.Main.DefaultTier)
	v.SetDefault("sessions.cron.auto_capture", d.Sessions.Cron.AutoCapture)
	v.SetDefault("sessions.cron.auto_inject", d.Sessions.Cron.AutoInject)
	v.SetDefault("sessions.cron.default_tier", d.Sessions.Cron.DefaultTier)
	v.SetDefault("sessions.spawned.auto_capture", d.Sessions.Spawned.AutoCapture)
	v.SetDefault("sessions.spawned.auto_inject", d.Sessions.Spawned.AutoInject)
	v.SetDefault("sessions.spawned.default_tier", d.Sessions.Spawned.DefaultTier)

	v.SetDefault("tiers.hot.ttl_hours", d.Tiers.Hot.TTLHours)
	v.SetDefault("tiers.warm.demotion_days", d.Tiers.Warm.DemotionDays)
	v.SetDefault("tiers.cold.promotion_uses", d.Tiers.Cold.PromotionUses)
	v.SetDefault("tiers.cold.promotion_days", d.Tiers.Cold.PromotionDays)

	v.SetDefault("decay.interval_hours", d.Decay.IntervalHours)
	v.SetDefault("decay.min_run_hours", d.Decay.MinRunHours)
	v.SetDefault("decay.profile", d.Decay.Profile)
	v.SetDefault("decay.default.hot_ttl_hours", *d.Decay.Default.HotTTLHours)
	v.SetDefault("decay.default.warm_ttl_hours", *d.Decay.Default.WarmTTLHours)
	v.SetDefault("decay.default.cold_ttl_hours", *d.Decay.Default.ColdTTLHours)

	v.SetDefault("scoring.similarity", d.Scoring.Similarity)
	v.SetDefault("scoring.recency", d.Scoring.Recency)
	v.SetDefault("scoring.frequency", d.Scoring.Frequency)

	v.SetDefault("injection.max_items", d.Injection.MaxItems)
	v.SetDefault("injection.min_score", d.Injection.MinScore)
	v.SetDefault("injection.budgets.pinned", d.Injection.Budgets.Pinned)
	v.SetDefault("injection.budgets.hot", d.Injection.Budgets.Hot)
	v.SetDefault("injection.budgets.warm", d.Injection.Budgets.Warm)
	v.SetDefault("injection.budgets.cold", d.Injection.Budgets.Cold)
	v.SetDefault("injection.budgets.archive", d.Injection.Budgets.Archive)

	v.SetDefault("context.ttl_hours", d.Context.TTLHours)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst_size", d.RateLimit.BurstSize)
}

var validTiers = map[string]bool{"hot": true, "warm": true, "cold": true, "archive": true}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaxBackups < 0 {
		return fmt.Errorf("database.max_backups must be >= 0")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: console, json")
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be > 0")
	}
	if c.Embedding.Provider == "" {
		return fmt.Errorf("embedding.provider is required")
	}

	for _, p := range []struct {
		name string
		prof SessionProfile
	}{{"main", c.Sessions.Main}, {"cron", c.Sessions.Cron}, {"spawned", c.Sessions.Spawned}} {
		if p.prof.DefaultTier != "" && !validTiers[p.prof.DefaultTier] {
			return fmt.Errorf("sessions.%s.default_tier must be one of: hot, warm, cold, archive", p.name)
		}
	}

	if c.Injection.MaxItems < 0 {
		return fmt.Errorf("injection.max_items must be >= 0")
	}
	if c.Injection.MinScore < 0 || c.Injection.MinScore > 1 {
		return fmt.Errorf("injection.min_score must be between 0 and 1")
	}

	sum := c.Injection.Budgets.Pinned + c.Injection.Budgets.Hot + c.Injection.Budgets.Warm + c.Injection.Budgets.Cold + c.Injection.Budgets.Archive
	if sum > 1.0001 {
		return fmt.Errorf("injection.budgets must sum to at most 1, got %.4f", sum)
	}

	wSum := c.Scoring.Similarity + c.Scoring.Recency + c.Scoring.Frequency
	if wSum <= 0 {
		return fmt.Errorf("scoring weights must sum to a positive value")
	}

	if c.Decay.IntervalHours <= 0 {
		return fmt.Errorf("decay.interval_hours must be > 0")
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func (c *Config) EnsureConfigDir() error {
	configDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the configuration directory.
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".mycelicmemory")
}

// DatabasePath returns the default database path.
func DatabasePath() string {
	return filepath.Join(ConfigPath(), "memories.db")
}
