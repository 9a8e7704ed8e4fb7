package config

const (
	defaultLedgerDB          = "~/.local/share/aliasarr/ledger.db"
	defaultLogDir            = "~/.local/share/aliasarr/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultReconcileEnabled  = true
	defaultReconcileInterval = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LedgerDB: defaultLedgerDB,
			LogDir:   defaultLogDir,
		},
		Reconcile: Reconcile{
			Enabled:            defaultReconcileEnabled,
			MinIntervalSeconds: defaultReconcileInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
