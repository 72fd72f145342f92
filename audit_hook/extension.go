// Package audithook bridges token ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnTransfer             = (*Extension)(nil)
	_ plugin.OnTransferDeclined     = (*Extension)(nil)
	_ plugin.OnApproval             = (*Extension)(nil)
	_ plugin.OnMint                 = (*Extension)(nil)
	_ plugin.OnBurn                 = (*Extension)(nil)
	_ plugin.OnMintAgentChanged     = (*Extension)(nil)
	_ plugin.OnOwnershipTransferred = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges committed ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Transfer hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer.
func (e *Extension) OnTransfer(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionTransferCommitted, SeverityInfo, OutcomeSuccess,
		ResourceTransfer, evt.ID.String(), CategoryLedger, nil,
		"seq", evt.Seq,
		"from", evt.From.Hex(),
		"to", evt.To.Hex(),
		"value", evt.Value.String(),
	)
}

// OnTransferDeclined implements plugin.OnTransferDeclined.
func (e *Extension) OnTransferDeclined(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionTransferDeclined, SeverityWarning, OutcomeDenied,
		ResourceTransfer, "", CategoryLedger, nil,
		"from", evt.From.Hex(),
		"to", evt.To.Hex(),
		"value", evt.Value.String(),
	)
}

// ──────────────────────────────────────────────────
// Allowance hooks
// ──────────────────────────────────────────────────

// OnApproval implements plugin.OnApproval.
func (e *Extension) OnApproval(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionApprovalChanged, SeverityInfo, OutcomeSuccess,
		ResourceAllowance, evt.ID.String(), CategoryLedger, nil,
		"seq", evt.Seq,
		"owner", evt.From.Hex(),
		"spender", evt.To.Hex(),
		"value", evt.Value.String(),
	)
}

// ──────────────────────────────────────────────────
// Supply hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (e *Extension) OnMint(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionSupplyMinted, SeverityInfo, OutcomeSuccess,
		ResourceSupply, evt.ID.String(), CategoryLedger, nil,
		"seq", evt.Seq,
		"to", evt.To.Hex(),
		"value", evt.Value.String(),
	)
}

// OnBurn implements plugin.OnBurn.
func (e *Extension) OnBurn(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionSupplyBurned, SeverityInfo, OutcomeSuccess,
		ResourceSupply, evt.ID.String(), CategoryLedger, nil,
		"seq", evt.Seq,
		"from", evt.From.Hex(),
		"value", evt.Value.String(),
	)
}

// ──────────────────────────────────────────────────
// Administration hooks
// ──────────────────────────────────────────────────

// OnMintAgentChanged implements plugin.OnMintAgentChanged.
func (e *Extension) OnMintAgentChanged(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionMintAgentChanged, SeverityWarning, OutcomeSuccess,
		ResourceAdmin, evt.ID.String(), CategoryAccess, nil,
		"seq", evt.Seq,
		"agent", evt.To.Hex(),
		"enabled", evt.Enabled,
	)
}

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (e *Extension) OnOwnershipTransferred(ctx context.Context, evt *event.Event) error {
	return e.record(ctx, ActionOwnershipTransferred, SeverityCritical, OutcomeSuccess,
		ResourceAdmin, evt.ID.String(), CategoryAccess, nil,
		"seq", evt.Seq,
		"previous_owner", evt.From.Hex(),
		"new_owner", evt.To.Hex(),
	)
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
