package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dpdlookup/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DPD_LOOKUP_DB", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDB := filepath.Join(tempHome, ".local", "share", "dpdlookup", "dpd.db")
	if cfg.Paths.Database != wantDB {
		t.Fatalf("unexpected database path: got %q want %q", cfg.Paths.Database, wantDB)
	}
	wantLocks := filepath.Join(tempHome, ".local", "share", "dpdlookup", "locks")
	if cfg.Paths.LockDir != wantLocks {
		t.Fatalf("unexpected lock dir: got %q want %q", cfg.Paths.LockDir, wantLocks)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Sync.DryRun {
		t.Fatal("expected dry run disabled by default")
	}
	if cfg.Sync.BusyTimeoutMS != 5000 {
		t.Fatalf("unexpected busy timeout: %d", cfg.Sync.BusyTimeoutMS)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dpdlookup.toml")
	t.Setenv("DPD_LOOKUP_DB", "")

	type payload struct {
		Paths struct {
			Database string `toml:"database"`
			LockDir  string `toml:"lock_dir"`
		} `toml:"paths"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
		Sync struct {
			DryRun        bool `toml:"dry_run"`
			BusyTimeoutMS int  `toml:"busy_timeout_ms"`
		} `toml:"sync"`
	}
	custom := payload{}
	custom.Paths.Database = filepath.Join(tempDir, "custom.db")
	custom.Paths.LockDir = filepath.Join(tempDir, "locks")
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"
	custom.Sync.DryRun = true
	custom.Sync.BusyTimeoutMS = 250
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.Database != custom.Paths.Database {
		t.Fatalf("expected database from file, got %q", cfg.Paths.Database)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
	if !cfg.Sync.DryRun {
		t.Fatal("expected dry run from file")
	}
	if cfg.Sync.BusyTimeoutMS != 250 {
		t.Fatalf("expected busy timeout 250, got %d", cfg.Sync.BusyTimeoutMS)
	}
}

func TestEnvVarOverridesDatabasePath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dpdlookup.toml")
	contents := "[paths]\ndatabase = \"" + filepath.Join(tempDir, "file.db") + "\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	envDB := filepath.Join(tempDir, "env.db")
	t.Setenv("DPD_LOOKUP_DB", envDB)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Database != envDB {
		t.Errorf("expected database from env, got %q", cfg.Paths.Database)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dpdlookup.toml")
	if err := os.WriteFile(configPath, []byte("[sync]\nparallel = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "DPD_LOOKUP_DB") {
		t.Fatalf("sample config missing env override note: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.Database, "dpdlookup") {
		t.Fatalf("expected database path to contain dpdlookup, got %q", cfg.Paths.Database)
	}
	if cfg.Sync.BusyTimeoutMS != config.Default().Sync.BusyTimeoutMS {
		t.Fatalf("sample busy timeout drifted from default: %d", cfg.Sync.BusyTimeoutMS)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Database = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty database path")
	}

	cfg = config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log level")
	}

	cfg = config.Default()
	cfg.Sync.BusyTimeoutMS = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative busy timeout")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Database = filepath.Join(root, "data", "dpd.db")
	cfg.Paths.LockDir = filepath.Join(root, "locks")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Logging.ToFile = true

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{filepath.Join(root, "data"), cfg.Paths.LockDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist (err=%v)", dir, err)
		}
	}
}
