package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.MaxBackups != 7 {
		t.Errorf("Expected MaxBackups=7, got %d", cfg.Database.MaxBackups)
	}
	if cfg.Database.BackupInterval != 24*time.Hour {
		t.Errorf("Expected BackupInterval=24h, got %v", cfg.Database.BackupInterval)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("Expected AutoMigrate=true")
	}

	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("Expected Embedding.Provider=ollama, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("Expected Embedding.Model=nomic-embed-text, got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("Expected Embedding.Dimensions=768, got %d", cfg.Embedding.Dimensions)
	}

	if !cfg.Sessions.Main.AutoCapture || !cfg.Sessions.Main.AutoInject {
		t.Error("Expected sessions.main auto_capture and auto_inject to default true")
	}
	if cfg.Sessions.Cron.AutoCapture {
		t.Error("Expected sessions.cron.auto_capture to default false")
	}
	if cfg.Sessions.Main.DefaultTier != "hot" {
		t.Errorf("Expected sessions.main.default_tier=hot, got %s", cfg.Sessions.Main.DefaultTier)
	}

	if cfg.Decay.Profile != "thorough" {
		t.Errorf("Expected decay.profile=thorough, got %s", cfg.Decay.Profile)
	}
	if got := *cfg.Decay.Default.HotTTLHours; got != 72 {
		t.Errorf("Expected decay.default.hot_ttl_hours=72, got %v", got)
	}

	wSum := cfg.Scoring.Similarity + cfg.Scoring.Recency + cfg.Scoring.Frequency
	if wSum <= 0.99 || wSum >= 1.01 {
		t.Errorf("Expected scoring weights to sum to ~1, got %v", wSum)
	}

	if cfg.Injection.MaxItems != 20 {
		t.Errorf("Expected injection.max_items=20, got %d", cfg.Injection.MaxItems)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name: "empty database path",
			modify: func(c *Config) {
				c.Database.Path = ""
			},
			expectErr: true,
		},
		{
			name: "negative max backups",
			modify: func(c *Config) {
				c.Database.MaxBackups = -1
			},
			expectErr: true,
		},
		{
			name: "invalid logging level",
			modify: func(c *Config) {
				c.Logging.Level = "invalid"
			},
			expectErr: true,
		},
		{
			name: "invalid logging format",
			modify: func(c *Config) {
				c.Logging.Format = "yaml"
			},
			expectErr: true,
		},
		{
			name: "zero embedding dimensions",
			modify: func(c *Config) {
				c.Embedding.Dimensions = 0
			},
			expectErr: true,
		},
		{
			name: "empty embedding provider",
			modify: func(c *Config) {
				c.Embedding.Provider = ""
			},
			expectErr: true,
		},
		{
			name: "invalid session default tier",
			modify: func(c *Config) {
				c.Sessions.Main.DefaultTier = "lukewarm"
			},
			expectErr: true,
		},
		{
			name: "negative injection max items",
			modify: func(c *Config) {
				c.Injection.MaxItems = -1
			},
			expectErr: true,
		},
		{
			name: "out of range min score",
			modify: func(c *Config) {
				c.Injection.MinScore = 1.5
			},
			expectErr: true,
		},
		{
			name: "budgets sum over one",
			modify: func(c *Config) {
				c.Injection.Budgets.Hot = 2.0
			},
			expectErr: true,
		},
		{
			name: "zero decay interval",
			modify: func(c *Config) {
				c.Decay.IntervalHours = 0
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", oldHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error with missing config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}
	if cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("Expected default embedding model, got %s", cfg.Embedding.Model)
	}
}

func TestLoadConfig_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
profile: test
database:
  path: /tmp/test.db
  backup_interval: 12h
  max_backups: 3
  auto_migrate: false
embedding:
  provider: ollama
  model: nomic-embed-text
  dimensions: 768
sessions:
  cron:
    auto_capture: true
logging:
  level: debug
  format: json
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Profile != "test" {
		t.Errorf("Expected profile=test, got %s", cfg.Profile)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Expected database path=/tmp/test.db, got %s", cfg.Database.Path)
	}
	if cfg.Database.MaxBackups != 3 {
		t.Errorf("Expected max_backups=3, got %d", cfg.Database.MaxBackups)
	}
	if cfg.Sessions.Cron.AutoCapture != true {
		t.Error("Expected sessions.cron.auto_capture=true from file override")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level=debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_AutoRecallBareBool(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
auto_recall: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd) //nolint:errcheck
	_ = os.Chdir(tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config with bare auto_recall bool: %v", err)
	}
	if !cfg.AutoRecall.Enabled {
		t.Errorf("Expected bare auto_recall: true to decode as Enabled=true, got %+v", cfg.AutoRecall)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(tmpDir, "subdir", "test.db"),
		},
	}

	if err := cfg.EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "subdir")); os.IsNotExist(err) {
		t.Error("Config directory was not created")
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if path == "" {
		t.Error("ConfigPath returned empty string")
	}

	homeDir, _ := os.UserHomeDir()
	expected := filepath.Join(homeDir, ".mycelicmemory")
	if path != expected {
		t.Errorf("Expected %s, got %s", expected, path)
	}
}

func TestDatabasePath(t *testing.T) {
	path := DatabasePath()
	if path == "" {
		t.Error("DatabasePath returned empty string")
	}

	if filepath.Base(path) != "memories.db" {
		t.Errorf("Expected database file named memories.db, got %s", filepath.Base(path))
	}
}

func TestAutoRecallResolve(t *testing.T) {
	inj := InjectionConfig{
		MaxItems: 20,
		MinScore: 0.1,
		Budgets:  BudgetsConfig{Hot: 0.5},
	}

	bare := AutoRecallConfig{Enabled: true}
	resolved := bare.Resolve(inj)
	if resolved.MaxItems != 20 || resolved.MinScore != 0.1 {
		t.Errorf("Expected bare autoRecall to inherit injection defaults, got %+v", resolved)
	}

	override := 5
	withOverride := AutoRecallConfig{Enabled: true, MaxItems: &override}
	resolved = withOverride.Resolve(inj)
	if resolved.MaxItems != 5 {
		t.Errorf("Expected max_items override to apply, got %d", resolved.MaxItems)
	}
	if resolved.MinScore != 0.1 {
		t.Errorf("Expected min_score to still inherit from injection, got %v", resolved.MinScore)
	}
}
