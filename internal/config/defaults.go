package config

const (
	defaultConfigPath    = "~/.config/dpdlookup/config.toml"
	defaultDatabasePath  = "~/.local/share/dpdlookup/dpd.db"
	defaultLockDir       = "~/.local/share/dpdlookup/locks"
	defaultLogDir        = "~/.local/share/dpdlookup/logs"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultBusyTimeoutMS = 5000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Database: defaultDatabasePath,
			LockDir:  defaultLockDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Sync: Sync{
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
	}
}
