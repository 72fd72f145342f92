package extension

// Config holds the token ledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.tokenledger" or "tokenledger" keys).
type Config struct {
	// DisableMigrate prevents auto-migration and genesis on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Name is the token name used at genesis.
	Name string `json:"name" mapstructure:"name" yaml:"name"`

	// Symbol is the token symbol used at genesis.
	Symbol string `json:"symbol" mapstructure:"symbol" yaml:"symbol"`

	// Decimals is the number of base-10 fractional digits (default: 18).
	Decimals uint8 `json:"decimals" mapstructure:"decimals" yaml:"decimals"`

	// Creator is the hex address credited with the initial supply and
	// installed as owner and sole mint agent at genesis.
	Creator string `json:"creator" mapstructure:"creator" yaml:"creator"`

	// InitialUnits is the initial supply in whole token units
	// (default: 1,000,000).
	InitialUnits uint64 `json:"initial_units" mapstructure:"initial_units" yaml:"initial_units"`

	// EagerSnapshots controls whether a snapshot is persisted after every
	// committed operation (default: true).
	EagerSnapshots *bool `json:"eager_snapshots" mapstructure:"eager_snapshots" yaml:"eager_snapshots"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Decimals:     18,
		InitialUnits: 1_000_000,
	}
}
