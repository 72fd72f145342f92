// Package memory provides the dependency-free in-memory store backend.
// It is the default for tests and embedded use.
package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/state"
)

type Store struct {
	mu sync.RWMutex

	snapshot *state.Snapshot
	events   []*event.Event
	closed   bool
}

func New() *Store {
	return &Store{
		events: make([]*event.Event, 0),
	}
}

func (s *Store) LoadSnapshot(_ context.Context) (*state.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tokenledger.ErrStoreClosed
	}
	if s.snapshot == nil {
		return nil, tokenledger.ErrSnapshotNotFound
	}
	return s.snapshot, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snap *state.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tokenledger.ErrStoreClosed
	}
	s.snapshot = snap
	return nil
}

func (s *Store) AppendEvents(_ context.Context, events []*event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tokenledger.ErrStoreClosed
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) ListEvents(_ context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tokenledger.ErrStoreClosed
	}

	result := make([]*event.Event, 0)
	for _, e := range s.events {
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if opts.Address != (common.Address{}) && e.From != opts.Address && e.To != opts.Address {
			continue
		}
		if e.Seq <= opts.AfterSeq {
			continue
		}
		result = append(result, e)
	}

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) PurgeEvents(_ context.Context, beforeSeq uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, tokenledger.ErrStoreClosed
	}

	var count int64
	kept := make([]*event.Event, 0, len(s.events))
	for _, e := range s.events {
		if e.Seq < beforeSeq {
			count++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return count, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return tokenledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
