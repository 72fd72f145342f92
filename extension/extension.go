// Package extension provides the Forge extension adapter for the token
// ledger.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.tokenledger" or
// "tokenledger" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	tokenledger "github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/store/memory"
	mongostore "github.com/xraph/tokenledger/store/mongo"
	pgstore "github.com/xraph/tokenledger/store/postgres"
	sqlitestore "github.com/xraph/tokenledger/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "tokenledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Embeddable fungible-token ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Dialect selects the store backend built over a grove.DB.
type Dialect string

// Supported grove dialects.
const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
	DialectMongo    Dialect = "mongo"
)

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the token ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *tokenledger.Ledger
	store      store.Store
	groveDB    *grove.DB
	dialect    Dialect
	ledgerOpts []tokenledger.Option
}

// New creates a new token ledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *tokenledger.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.buildStore(); err != nil {
		return err
	}

	cfg := tokenledger.Config{
		Name:         e.config.Name,
		Symbol:       e.config.Symbol,
		Decimals:     e.config.Decimals,
		Creator:      tokenledger.HexToAddress(e.config.Creator),
		InitialUnits: e.config.InitialUnits,
	}

	opts := e.ledgerOpts
	if e.config.EagerSnapshots != nil {
		opts = append(opts, tokenledger.WithEagerSnapshots(*e.config.EagerSnapshots))
	}

	e.engine = tokenledger.New(e.store, cfg, opts...)

	return vessel.Provide(fapp.Container(), func() (*tokenledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("tokenledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("tokenledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildStore selects the store backend: an explicit store wins, then a
// grove DB with its declared dialect, then the in-memory default.
func (e *Extension) buildStore() error {
	if e.store != nil {
		return nil
	}

	if e.groveDB != nil {
		switch e.dialect {
		case DialectPostgres:
			e.store = pgstore.New(e.groveDB)
		case DialectSQLite:
			e.store = sqlitestore.New(e.groveDB)
		case DialectMongo:
			e.store = mongostore.New(e.groveDB)
		default:
			return fmt.Errorf("tokenledger: unknown grove dialect %q", e.dialect)
		}
		return nil
	}

	e.store = memory.New()
	return nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("tokenledger: configuration is required but not found in config files; " +
				"ensure 'extensions.tokenledger' or 'tokenledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("tokenledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("name", e.config.Name),
		forge.F("symbol", e.config.Symbol),
		forge.F("decimals", e.config.Decimals),
		forge.F("creator", e.config.Creator),
		forge.F("initial_units", e.config.InitialUnits),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.tokenledger" first (namespaced pattern).
	if cm.IsSet("extensions.tokenledger") {
		if err := cm.Bind("extensions.tokenledger", &cfg); err == nil {
			e.Logger().Debug("tokenledger: loaded config from file",
				forge.F("key", "extensions.tokenledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("tokenledger: failed to bind extensions.tokenledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "tokenledger" key.
	if cm.IsSet("tokenledger") {
		if err := cm.Bind("tokenledger", &cfg); err == nil {
			e.Logger().Debug("tokenledger: loaded config from file",
				forge.F("key", "tokenledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("tokenledger: failed to bind tokenledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Decimals == 0 {
		cfg.Decimals = defaults.Decimals
	}
	if cfg.InitialUnits == 0 {
		cfg.InitialUnits = defaults.InitialUnits
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Name == "" && programmaticConfig.Name != "" {
		yamlConfig.Name = programmaticConfig.Name
	}
	if yamlConfig.Symbol == "" && programmaticConfig.Symbol != "" {
		yamlConfig.Symbol = programmaticConfig.Symbol
	}
	if yamlConfig.Creator == "" && programmaticConfig.Creator != "" {
		yamlConfig.Creator = programmaticConfig.Creator
	}

	// Numeric fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.Decimals == 0 && programmaticConfig.Decimals != 0 {
		yamlConfig.Decimals = programmaticConfig.Decimals
	}
	if yamlConfig.InitialUnits == 0 && programmaticConfig.InitialUnits != 0 {
		yamlConfig.InitialUnits = programmaticConfig.InitialUnits
	}
	if yamlConfig.EagerSnapshots == nil && programmaticConfig.EagerSnapshots != nil {
		yamlConfig.EagerSnapshots = programmaticConfig.EagerSnapshots
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
