// Package store defines the persistence interface for ledger state and
// the event journal. Backends must be durable replicas of committed
// state only; the engine never reads through them on the hot path.
package store

import (
	"context"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/state"
)

// Store is the unified storage interface for the ledger.
type Store interface {
	// Snapshot methods. SaveSnapshot replaces any previous snapshot;
	// LoadSnapshot returns tokenledger.ErrSnapshotNotFound when the
	// backend holds no state yet.
	LoadSnapshot(ctx context.Context) (*state.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *state.Snapshot) error

	// Journal methods. AppendEvents must persist the batch atomically:
	// either every event of a committed operation is journaled or none is.
	AppendEvents(ctx context.Context, events []*event.Event) error
	ListEvents(ctx context.Context, opts event.QueryOpts) ([]*event.Event, error)
	PurgeEvents(ctx context.Context, beforeSeq uint64) (int64, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
