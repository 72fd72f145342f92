package extension

import (
	"github.com/xraph/grove"

	tokenledger "github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/plugin"
	"github.com/xraph/tokenledger/store"
)

// Option configures the token ledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveDB sets the grove database and dialect to build the store
// backend from. Ignored when WithStore was also provided.
func WithGroveDB(db *grove.DB, dialect Dialect) Option {
	return func(e *Extension) {
		e.groveDB = db
		e.dialect = dialect
	}
}

// WithLedgerOption passes a tokenledger.Option through to the underlying engine.
func WithLedgerOption(opt tokenledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, tokenledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration and genesis on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithToken sets the genesis token metadata.
func WithToken(name, symbol, creator string) Option {
	return func(e *Extension) {
		e.config.Name = name
		e.config.Symbol = symbol
		e.config.Creator = creator
	}
}

// WithInitialUnits sets the initial supply in whole token units.
func WithInitialUnits(units uint64) Option {
	return func(e *Extension) { e.config.InitialUnits = units }
}

// WithDecimals sets the number of fractional digits.
func WithDecimals(decimals uint8) Option {
	return func(e *Extension) { e.config.Decimals = decimals }
}

// WithEagerSnapshots controls per-commit snapshot persistence.
func WithEagerSnapshots(enabled bool) Option {
	return func(e *Extension) { e.config.EagerSnapshots = &enabled }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
