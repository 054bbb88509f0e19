package testsupport

import (
	"path/filepath"
	"testing"

	"dpdlookup/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Database = filepath.Join(base, "data", "dpd.db")
	cfgVal.Paths.LockDir = filepath.Join(base, "locks")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Sync.BusyTimeoutMS = 2000

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDryRun enables dry-run syncs on the test config.
func WithDryRun() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.DryRun = true
	}
}

// WithDatabase points the test config at a database file under the temp dir.
func WithDatabase(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.Database = filepath.Join(b.baseDir, "data", name)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LockDir)
}
