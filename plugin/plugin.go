// Package plugin provides an extensible plugin system for the token ledger.
// Plugins can hook into committed state changes to extend functionality;
// they observe events, they never influence whether an operation commits.
package plugin

import (
	"context"

	"github.com/xraph/tokenledger/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, ledger interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Ledger event hooks
// ──────────────────────────────────────────────────

// OnTransfer is called after a transfer commits. This includes the
// synthetic zero-address transfers emitted alongside mint and burn.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, e *event.Event) error
}

// OnTransferDeclined is called when a transfer returns false without
// committing (insufficient funds or zero value). No event is journaled
// for declined transfers; the hook receives the would-be record.
type OnTransferDeclined interface {
	Plugin
	OnTransferDeclined(ctx context.Context, e *event.Event) error
}

// OnApproval is called after an allowance change commits.
type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, e *event.Event) error
}

// OnMint is called after a supply increase commits.
type OnMint interface {
	Plugin
	OnMint(ctx context.Context, e *event.Event) error
}

// OnBurn is called after a supply decrease commits.
type OnBurn interface {
	Plugin
	OnBurn(ctx context.Context, e *event.Event) error
}

// OnMintAgentChanged is called after mint agent membership changes,
// including idempotent repeats.
type OnMintAgentChanged interface {
	Plugin
	OnMintAgentChanged(ctx context.Context, e *event.Event) error
}

// OnOwnershipTransferred is called after the administrative owner changes.
type OnOwnershipTransferred interface {
	Plugin
	OnOwnershipTransferred(ctx context.Context, e *event.Event) error
}
