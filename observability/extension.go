// Package observability provides a metrics extension for the token ledger
// that records committed event counts via a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnTransfer             = (*MetricsExtension)(nil)
	_ plugin.OnTransferDeclined     = (*MetricsExtension)(nil)
	_ plugin.OnApproval             = (*MetricsExtension)(nil)
	_ plugin.OnMint                 = (*MetricsExtension)(nil)
	_ plugin.OnBurn                 = (*MetricsExtension)(nil)
	_ plugin.OnMintAgentChanged     = (*MetricsExtension)(nil)
	_ plugin.OnOwnershipTransferred = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger-wide operation metrics.
// Register it as a ledger plugin to automatically track token activity.
type MetricsExtension struct {
	factory MetricFactory

	// Transfer metrics
	Transfers         Counter
	TransfersDeclined Counter
	TransferVolume    Histogram

	// Allowance metrics
	Approvals Counter

	// Supply metrics
	Mints Counter
	Burns Counter

	// Administration metrics
	MintAgentChanges   Counter
	OwnershipTransfers Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Transfer metrics
		Transfers:         factory.Counter("tokenledger.transfer.committed"),
		TransfersDeclined: factory.Counter("tokenledger.transfer.declined"),
		TransferVolume:    factory.Histogram("tokenledger.transfer.volume"),

		// Allowance metrics
		Approvals: factory.Counter("tokenledger.approval.committed"),

		// Supply metrics
		Mints: factory.Counter("tokenledger.mint.committed"),
		Burns: factory.Counter("tokenledger.burn.committed"),

		// Administration metrics
		MintAgentChanges:   factory.Counter("tokenledger.mint_agent.changed"),
		OwnershipTransfers: factory.Counter("tokenledger.ownership.transferred"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Ledger event hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer.
func (m *MetricsExtension) OnTransfer(_ context.Context, e *event.Event) error {
	m.Transfers.Inc()
	if v, ok := e.Value.Uint64(); ok {
		m.TransferVolume.Observe(float64(v))
	}
	return nil
}

// OnTransferDeclined implements plugin.OnTransferDeclined.
func (m *MetricsExtension) OnTransferDeclined(_ context.Context, _ *event.Event) error {
	m.TransfersDeclined.Inc()
	return nil
}

// OnApproval implements plugin.OnApproval.
func (m *MetricsExtension) OnApproval(_ context.Context, _ *event.Event) error {
	m.Approvals.Inc()
	return nil
}

// OnMint implements plugin.OnMint.
func (m *MetricsExtension) OnMint(_ context.Context, _ *event.Event) error {
	m.Mints.Inc()
	return nil
}

// OnBurn implements plugin.OnBurn.
func (m *MetricsExtension) OnBurn(_ context.Context, _ *event.Event) error {
	m.Burns.Inc()
	return nil
}

// OnMintAgentChanged implements plugin.OnMintAgentChanged.
func (m *MetricsExtension) OnMintAgentChanged(_ context.Context, _ *event.Event) error {
	m.MintAgentChanges.Inc()
	return nil
}

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (m *MetricsExtension) OnOwnershipTransferred(_ context.Context, _ *event.Event) error {
	m.OwnershipTransfers.Inc()
	return nil
}
