package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	tokenledger "github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/state"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func seedEvents(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	batch := []*event.Event{
		event.NewTransfer(1, alice, bob, amount.FromUint64(10)),
		event.NewApproval(2, alice, bob, amount.FromUint64(50)),
		event.NewTransfer(3, bob, alice, amount.FromUint64(5)),
		event.NewMintAgentChanged(4, bob, true),
	}
	if err := s.AppendEvents(ctx, batch); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.LoadSnapshot(ctx); !errors.Is(err, tokenledger.ErrSnapshotNotFound) {
		t.Fatalf("empty store error = %v, want ErrSnapshotNotFound", err)
	}

	st := state.New(state.Metadata{Symbol: "TST", Decimals: 18})
	st.SetOwner(alice)
	st.SetBalance(alice, amount.FromUint64(100))
	st.SetTotalSupply(amount.FromUint64(100))

	if err := s.SaveSnapshot(ctx, st.Snapshot()); err != nil {
		t.Fatal(err)
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Owner != alice {
		t.Errorf("owner = %s", snap.Owner)
	}
	if got := snap.Balances[alice].String(); got != "100" {
		t.Errorf("balance = %s, want 100", got)
	}
}

func TestListEventsFilters(t *testing.T) {
	s := New()
	seedEvents(t, s)
	ctx := context.Background()

	all, err := s.ListEvents(ctx, event.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("all events = %d, want 4", len(all))
	}

	transfers, err := s.ListEvents(ctx, event.QueryOpts{Type: event.TypeTransfer})
	if err != nil {
		t.Fatal(err)
	}
	if len(transfers) != 2 {
		t.Fatalf("transfers = %d, want 2", len(transfers))
	}

	// Address filter matches either side.
	aliceEvents, err := s.ListEvents(ctx, event.QueryOpts{Address: alice})
	if err != nil {
		t.Fatal(err)
	}
	if len(aliceEvents) != 3 {
		t.Fatalf("alice events = %d, want 3", len(aliceEvents))
	}

	after, err := s.ListEvents(ctx, event.QueryOpts{AfterSeq: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 2 {
		t.Fatalf("after seq 2 = %d, want 2", len(after))
	}
	if after[0].Seq != 3 {
		t.Errorf("first after seq = %d, want 3", after[0].Seq)
	}

	paged, err := s.ListEvents(ctx, event.QueryOpts{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(paged) != 2 {
		t.Fatalf("paged = %d, want 2", len(paged))
	}
	if paged[0].Seq != 2 {
		t.Errorf("paged first seq = %d, want 2", paged[0].Seq)
	}
}

func TestPurgeEvents(t *testing.T) {
	s := New()
	seedEvents(t, s)
	ctx := context.Background()

	purged, err := s.PurgeEvents(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if purged != 2 {
		t.Fatalf("purged = %d, want 2", purged)
	}

	remaining, err := s.ListEvents(ctx, event.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d, want 2", len(remaining))
	}
	if remaining[0].Seq != 3 {
		t.Errorf("first remaining seq = %d, want 3", remaining[0].Seq)
	}
}

func TestClosedStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if err := s.Ping(ctx); !errors.Is(err, tokenledger.ErrStoreClosed) {
		t.Errorf("ping after close = %v, want ErrStoreClosed", err)
	}
	if _, err := s.LoadSnapshot(ctx); !errors.Is(err, tokenledger.ErrStoreClosed) {
		t.Errorf("load after close = %v, want ErrStoreClosed", err)
	}
	if err := s.AppendEvents(ctx, []*event.Event{event.NewMint(1, alice, amount.FromUint64(1))}); !errors.Is(err, tokenledger.ErrStoreClosed) {
		t.Errorf("append after close = %v, want ErrStoreClosed", err)
	}
}
