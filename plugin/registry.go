package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/tokenledger/event"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onTransfer             []OnTransfer
	onTransferDeclined     []OnTransferDeclined
	onApproval             []OnApproval
	onMint                 []OnMint
	onBurn                 []OnBurn
	onMintAgentChanged     []OnMintAgentChanged
	onOwnershipTransferred []OnOwnershipTransferred
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnTransferDeclined); ok {
		r.onTransferDeclined = append(r.onTransferDeclined, v)
	}
	if v, ok := p.(OnApproval); ok {
		r.onApproval = append(r.onApproval, v)
	}
	if v, ok := p.(OnMint); ok {
		r.onMint = append(r.onMint, v)
	}
	if v, ok := p.(OnBurn); ok {
		r.onBurn = append(r.onBurn, v)
	}
	if v, ok := p.(OnMintAgentChanged); ok {
		r.onMintAgentChanged = append(r.onMintAgentChanged, v)
	}
	if v, ok := p.(OnOwnershipTransferred); ok {
		r.onOwnershipTransferred = append(r.onOwnershipTransferred, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnTransfer)(nil)).Elem(), "OnTransfer")
	checkInterface(reflect.TypeOf((*OnTransferDeclined)(nil)).Elem(), "OnTransferDeclined")
	checkInterface(reflect.TypeOf((*OnApproval)(nil)).Elem(), "OnApproval")
	checkInterface(reflect.TypeOf((*OnMint)(nil)).Elem(), "OnMint")
	checkInterface(reflect.TypeOf((*OnBurn)(nil)).Elem(), "OnBurn")
	checkInterface(reflect.TypeOf((*OnMintAgentChanged)(nil)).Elem(), "OnMintAgentChanged")
	checkInterface(reflect.TypeOf((*OnOwnershipTransferred)(nil)).Elem(), "OnOwnershipTransferred")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransfer emits a committed transfer event.
func (r *Registry) EmitTransfer(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onTransfer
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransfer(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnTransfer failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransferDeclined emits a declined (false-returning) transfer.
func (r *Registry) EmitTransferDeclined(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onTransferDeclined
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransferDeclined(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnTransferDeclined failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitApproval emits an allowance change event.
func (r *Registry) EmitApproval(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onApproval
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnApproval(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnApproval failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMint emits a supply increase event.
func (r *Registry) EmitMint(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onMint
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMint(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnMint failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBurn emits a supply decrease event.
func (r *Registry) EmitBurn(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onBurn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBurn(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnBurn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMintAgentChanged emits a mint agent membership event.
func (r *Registry) EmitMintAgentChanged(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onMintAgentChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMintAgentChanged(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnMintAgentChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOwnershipTransferred emits an ownership change event.
func (r *Registry) EmitOwnershipTransferred(ctx context.Context, e *event.Event) {
	r.mu.RLock()
	plugins := r.onOwnershipTransferred
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOwnershipTransferred(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnOwnershipTransferred failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the commit pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
