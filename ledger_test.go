package tokenledger_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tokenledger "github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/store/memory"
)

var (
	creator  = tokenledger.HexToAddress("0x00000000000000000000000000000000000000aa")
	bob      = tokenledger.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol    = tokenledger.HexToAddress("0x00000000000000000000000000000000000000c3")
	stranger = tokenledger.HexToAddress("0x00000000000000000000000000000000000000dd")
)

// initialSupply is 1,000,000 units at 18 decimals.
var initialSupply = amount.MustParse("1000000" + strings.Repeat("0", 18))

func newTestLedger(t *testing.T) (*tokenledger.Ledger, *memory.Store) {
	t.Helper()

	s := memory.New()
	l := tokenledger.New(s, tokenledger.Config{
		Name:    "Test Token",
		Symbol:  "TST",
		Creator: creator,
	})
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return l, s
}

// checkSupply verifies the sum of known balances equals total supply.
func checkSupply(t *testing.T, l *tokenledger.Ledger, accounts ...tokenledger.Address) {
	t.Helper()

	sum := amount.Zero()
	for _, acct := range accounts {
		var err error
		sum, err = sum.Add(l.BalanceOf(acct))
		if err != nil {
			t.Fatal(err)
		}
	}
	if sum.Cmp(l.TotalSupply()) != 0 {
		t.Fatalf("balance sum %s != total supply %s", sum, l.TotalSupply())
	}
}

// ──────────────────────────────────────────────────
// Genesis
// ──────────────────────────────────────────────────

func TestGenesis(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()

	if got := l.BalanceOf(creator); got.Cmp(initialSupply) != 0 {
		t.Errorf("creator balance = %s, want %s", got, initialSupply)
	}
	if got := l.TotalSupply(); got.Cmp(initialSupply) != 0 {
		t.Errorf("total supply = %s, want %s", got, initialSupply)
	}
	if l.Owner() != creator {
		t.Errorf("owner = %s, want creator", l.Owner())
	}
	if !l.IsMintAgent(creator) {
		t.Error("creator should be a mint agent")
	}
	if l.IsMintAgent(bob) {
		t.Error("bob should not be a mint agent")
	}
	if l.Name() != "Test Token" || l.Symbol() != "TST" || l.Decimals() != 18 {
		t.Errorf("metadata = %q %q %d", l.Name(), l.Symbol(), l.Decimals())
	}

	// Genesis journals a zero-address transfer followed by a mint.
	events, err := l.Events(context.Background(), event.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("genesis events = %d, want 2", len(events))
	}
	if events[0].Type != event.TypeTransfer || events[0].From != (tokenledger.Address{}) || events[0].To != creator {
		t.Errorf("first genesis event = %+v", events[0])
	}
	if events[1].Type != event.TypeMint || events[1].To != creator {
		t.Errorf("second genesis event = %+v", events[1])
	}
}

func TestGenesisRequiresCreator(t *testing.T) {
	l := tokenledger.New(memory.New(), tokenledger.Config{Symbol: "TST"})
	err := l.Start(context.Background())
	if !errors.Is(err, tokenledger.ErrZeroAddress) {
		t.Fatalf("start without creator = %v, want ErrZeroAddress", err)
	}
}

func TestNotStarted(t *testing.T) {
	l := tokenledger.New(memory.New(), tokenledger.Config{Creator: creator})

	_, err := l.Transfer(context.Background(), creator, bob, amount.FromUint64(1))
	if !errors.Is(err, tokenledger.ErrNotStarted) {
		t.Fatalf("transfer before start = %v, want ErrNotStarted", err)
	}
}

func TestDoubleStart(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()

	if err := l.Start(context.Background()); !errors.Is(err, tokenledger.ErrAlreadyStarted) {
		t.Fatalf("second start = %v, want ErrAlreadyStarted", err)
	}
}

// ──────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────

func TestTransfer(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	ok, err := l.Transfer(ctx, creator, bob, amount.FromUint64(100))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("transfer should succeed")
	}

	if got := l.BalanceOf(bob).String(); got != "100" {
		t.Errorf("bob balance = %s, want 100", got)
	}
	checkSupply(t, l, creator, bob)

	events, err := l.Events(ctx, event.QueryOpts{Type: event.TypeTransfer, AfterSeq: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].From != creator || events[0].To != bob {
		t.Fatalf("transfer events = %+v", events)
	}
}

func TestTransferToSelf(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	before := l.BalanceOf(creator)

	// A self-transfer commits and journals but must leave the balance
	// exactly where it was.
	ok, err := l.Transfer(ctx, creator, creator, amount.FromUint64(100))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("self-transfer should succeed")
	}

	if got := l.BalanceOf(creator); got.Cmp(before) != 0 {
		t.Errorf("creator balance = %s, want %s", got, before)
	}
	checkSupply(t, l, creator)
}

func TestTransferInsufficientIsFalseNotError(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	// Bob has nothing; the transfer is declined, not failed.
	ok, err := l.Transfer(ctx, bob, carol, amount.FromUint64(1))
	if err != nil {
		t.Fatalf("declined transfer returned error: %v", err)
	}
	if ok {
		t.Fatal("declined transfer returned true")
	}

	if !l.BalanceOf(carol).IsZero() {
		t.Error("declined transfer moved funds")
	}

	// No event is journaled for a declined transfer.
	events, err := l.Events(ctx, event.QueryOpts{AfterSeq: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("declined transfer journaled %d events", len(events))
	}
}

func TestTransferZeroValueIsFalse(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()

	ok, err := l.Transfer(context.Background(), creator, bob, amount.Zero())
	if err != nil {
		t.Fatalf("zero transfer returned error: %v", err)
	}
	if ok {
		t.Fatal("zero transfer returned true")
	}
}

func TestTransferToZeroAddress(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()

	_, err := l.Transfer(context.Background(), creator, tokenledger.Address{}, amount.FromUint64(1))
	if !errors.Is(err, tokenledger.ErrZeroAddress) {
		t.Fatalf("transfer to zero address = %v, want ErrZeroAddress", err)
	}
}

// ──────────────────────────────────────────────────
// Approve / TransferFrom
// ──────────────────────────────────────────────────

func TestApproveAndTransferFrom(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	ok, err := l.Approve(ctx, creator, bob, amount.FromUint64(50))
	if err != nil || !ok {
		t.Fatalf("approve = %v %v", ok, err)
	}
	if got := l.AllowanceOf(creator, bob).String(); got != "50" {
		t.Fatalf("allowance = %s, want 50", got)
	}

	ok, err = l.TransferFrom(ctx, bob, creator, carol, amount.FromUint64(50))
	if err != nil || !ok {
		t.Fatalf("transferFrom = %v %v", ok, err)
	}

	if got := l.BalanceOf(carol).String(); got != "50" {
		t.Errorf("carol balance = %s, want 50", got)
	}
	if !l.AllowanceOf(creator, bob).IsZero() {
		t.Errorf("allowance = %s, want 0", l.AllowanceOf(creator, bob))
	}
	checkSupply(t, l, creator, bob, carol)
}

func TestTransferFromBackToOwner(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	if _, err := l.Approve(ctx, creator, bob, amount.FromUint64(100)); err != nil {
		t.Fatal(err)
	}

	before := l.BalanceOf(creator)

	// Pulling funds from creator back to creator nets the balance out,
	// but still consumes the allowance.
	ok, err := l.TransferFrom(ctx, bob, creator, creator, amount.FromUint64(100))
	if err != nil || !ok {
		t.Fatalf("transferFrom = %v %v", ok, err)
	}

	if got := l.BalanceOf(creator); got.Cmp(before) != 0 {
		t.Errorf("creator balance = %s, want %s", got, before)
	}
	if !l.AllowanceOf(creator, bob).IsZero() {
		t.Errorf("allowance = %s, want 0", l.AllowanceOf(creator, bob))
	}
	checkSupply(t, l, creator, bob)
}

func TestTransferFromExhaustedAllowance(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	if _, err := l.Approve(ctx, creator, bob, amount.FromUint64(50)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.TransferFrom(ctx, bob, creator, carol, amount.FromUint64(50)); err != nil {
		t.Fatal(err)
	}

	// Allowance is spent; the next pull is a hard error, unlike Transfer.
	_, err := l.TransferFrom(ctx, bob, creator, carol, amount.FromUint64(1))
	if !errors.Is(err, tokenledger.ErrInsufficientAllowance) {
		t.Fatalf("exhausted transferFrom = %v, want ErrInsufficientAllowance", err)
	}

	if got := l.BalanceOf(carol).String(); got != "50" {
		t.Errorf("failed transferFrom changed state: carol = %s", got)
	}
}

func TestTransferFromInsufficientBalance(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	// Bob approves more than he holds.
	if _, err := l.Approve(ctx, bob, carol, amount.FromUint64(100)); err != nil {
		t.Fatal(err)
	}

	_, err := l.TransferFrom(ctx, carol, bob, creator, amount.FromUint64(100))
	if !errors.Is(err, tokenledger.ErrInsufficientBalance) {
		t.Fatalf("transferFrom = %v, want ErrInsufficientBalance", err)
	}
}

func TestApproveRaceGuard(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	if _, err := l.Approve(ctx, creator, bob, amount.FromUint64(50)); err != nil {
		t.Fatal(err)
	}

	// Non-zero over non-zero is the race the guard exists for.
	_, err := l.Approve(ctx, creator, bob, amount.FromUint64(60))
	if !errors.Is(err, tokenledger.ErrAllowanceRace) {
		t.Fatalf("reapprove = %v, want ErrAllowanceRace", err)
	}
	if got := l.AllowanceOf(creator, bob).String(); got != "50" {
		t.Errorf("failed approve changed allowance to %s", got)
	}

	// Zeroing first makes any new value legal.
	if _, err := l.Approve(ctx, creator, bob, amount.Zero()); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Approve(ctx, creator, bob, amount.FromUint64(60)); err != nil {
		t.Fatal(err)
	}
	if got := l.AllowanceOf(creator, bob).String(); got != "60" {
		t.Errorf("allowance = %s, want 60", got)
	}
}

func TestIncreaseDecreaseApproval(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	if _, err := l.IncreaseApproval(ctx, creator, bob, amount.FromUint64(30)); err != nil {
		t.Fatal(err)
	}
	// Increase composes without the race guard.
	if _, err := l.IncreaseApproval(ctx, creator, bob, amount.FromUint64(20)); err != nil {
		t.Fatal(err)
	}
	if got := l.AllowanceOf(creator, bob).String(); got != "50" {
		t.Fatalf("allowance = %s, want 50", got)
	}

	if _, err := l.DecreaseApproval(ctx, creator, bob, amount.FromUint64(10)); err != nil {
		t.Fatal(err)
	}
	if got := l.AllowanceOf(creator, bob).String(); got != "40" {
		t.Fatalf("allowance = %s, want 40", got)
	}

	// Over-decrement clamps at zero rather than failing.
	if _, err := l.DecreaseApproval(ctx, creator, bob, amount.FromUint64(1000)); err != nil {
		t.Fatal(err)
	}
	if !l.AllowanceOf(creator, bob).IsZero() {
		t.Fatalf("clamped allowance = %s, want 0", l.AllowanceOf(creator, bob))
	}
}

// ──────────────────────────────────────────────────
// Mint / Burn
// ──────────────────────────────────────────────────

func TestMint(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	before := l.TotalSupply()

	if err := l.Mint(ctx, creator, amount.FromUint64(500)); err != nil {
		t.Fatal(err)
	}

	want, err := before.Add(amount.FromUint64(500))
	if err != nil {
		t.Fatal(err)
	}
	if got := l.TotalSupply(); got.Cmp(want) != 0 {
		t.Errorf("supply = %s, want %s", got, want)
	}
	checkSupply(t, l, creator)

	// Mint journals a zero-address transfer followed by a mint record.
	events, err := l.Events(ctx, event.QueryOpts{AfterSeq: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("mint events = %d, want 2", len(events))
	}
	if events[0].Type != event.TypeTransfer || events[0].From != (tokenledger.Address{}) {
		t.Errorf("first mint event = %+v", events[0])
	}
	if events[1].Type != event.TypeMint {
		t.Errorf("second mint event = %+v", events[1])
	}
}

func TestMintUnauthorized(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()

	err := l.Mint(context.Background(), bob, amount.FromUint64(1))
	if !errors.Is(err, tokenledger.ErrUnauthorized) {
		t.Fatalf("mint by non-agent = %v, want ErrUnauthorized", err)
	}
	if !l.BalanceOf(bob).IsZero() {
		t.Error("failed mint changed balance")
	}
}

func TestBurnFrom(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	if _, err := l.Transfer(ctx, creator, bob, amount.FromUint64(100)); err != nil {
		t.Fatal(err)
	}

	if err := l.BurnFrom(ctx, creator, bob, amount.FromUint64(40)); err != nil {
		t.Fatal(err)
	}
	if got := l.BalanceOf(bob).String(); got != "60" {
		t.Errorf("bob balance = %s, want 60", got)
	}
	checkSupply(t, l, creator, bob)

	t.Run("Unauthorized", func(t *testing.T) {
		err := l.BurnFrom(ctx, bob, bob, amount.FromUint64(1))
		if !errors.Is(err, tokenledger.ErrUnauthorized) {
			t.Fatalf("burn by non-owner = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("ZeroValue", func(t *testing.T) {
		err := l.BurnFrom(ctx, creator, bob, amount.Zero())
		if !errors.Is(err, tokenledger.ErrInvalidArgument) {
			t.Fatalf("zero burn = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("ExceedsBalance", func(t *testing.T) {
		err := l.BurnFrom(ctx, creator, bob, amount.FromUint64(1000))
		if !errors.Is(err, tokenledger.ErrInvalidArgument) {
			t.Fatalf("oversized burn = %v, want ErrInvalidArgument", err)
		}
		if got := l.BalanceOf(bob).String(); got != "60" {
			t.Errorf("failed burn changed balance to %s", got)
		}
	})
}

func TestBurnSelf(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	// Bob becomes a mint agent and mints his own supply.
	if err := l.SetMintAgent(ctx, creator, bob, true); err != nil {
		t.Fatal(err)
	}
	if err := l.Mint(ctx, bob, amount.FromUint64(100)); err != nil {
		t.Fatal(err)
	}

	if err := l.BurnSelf(ctx, bob, amount.FromUint64(30)); err != nil {
		t.Fatal(err)
	}
	if got := l.BalanceOf(bob).String(); got != "70" {
		t.Errorf("bob balance = %s, want 70", got)
	}
	checkSupply(t, l, creator, bob)

	// Agents burn only their own balance; strangers cannot self-burn.
	err := l.BurnSelf(ctx, carol, amount.FromUint64(1))
	if !errors.Is(err, tokenledger.ErrUnauthorized) {
		t.Fatalf("self-burn by non-agent = %v, want ErrUnauthorized", err)
	}
}

// ──────────────────────────────────────────────────
// Administration
// ──────────────────────────────────────────────────

func TestTransferOwnership(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	t.Run("Unauthorized", func(t *testing.T) {
		err := l.TransferOwnership(ctx, bob, bob)
		if !errors.Is(err, tokenledger.ErrUnauthorized) {
			t.Fatalf("ownership grab = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("ZeroAddress", func(t *testing.T) {
		err := l.TransferOwnership(ctx, creator, tokenledger.Address{})
		if !errors.Is(err, tokenledger.ErrZeroAddress) {
			t.Fatalf("ownership to zero = %v, want ErrZeroAddress", err)
		}
	})

	t.Run("SelfTransfer", func(t *testing.T) {
		err := l.TransferOwnership(ctx, creator, creator)
		if !errors.Is(err, tokenledger.ErrInvalidArgument) {
			t.Fatalf("ownership to self = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		if err := l.TransferOwnership(ctx, creator, bob); err != nil {
			t.Fatal(err)
		}
		if l.Owner() != bob {
			t.Errorf("owner = %s, want bob", l.Owner())
		}

		// Old owner lost administrative rights, but not agent status.
		if err := l.SetMintAgent(ctx, creator, carol, true); !errors.Is(err, tokenledger.ErrUnauthorized) {
			t.Errorf("former owner setMintAgent = %v, want ErrUnauthorized", err)
		}
		if !l.IsMintAgent(creator) {
			t.Error("ownership change should not revoke agent status")
		}
	})
}

func TestSetMintAgent(t *testing.T) {
	l, _ := newTestLedger(t)
	defer l.Stop()
	ctx := context.Background()

	t.Run("Unauthorized", func(t *testing.T) {
		err := l.SetMintAgent(ctx, stranger, stranger, true)
		if !errors.Is(err, tokenledger.ErrUnauthorized) {
			t.Fatalf("setMintAgent by stranger = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("EnableDisable", func(t *testing.T) {
		if err := l.SetMintAgent(ctx, creator, bob, true); err != nil {
			t.Fatal(err)
		}
		if !l.IsMintAgent(bob) {
			t.Fatal("bob should be an agent")
		}

		if err := l.SetMintAgent(ctx, creator, bob, false); err != nil {
			t.Fatal(err)
		}
		if l.IsMintAgent(bob) {
			t.Fatal("bob should no longer be an agent")
		}
	})

	t.Run("IdempotentAlwaysNotifies", func(t *testing.T) {
		before, err := l.Events(ctx, event.QueryOpts{Type: event.TypeMintAgentChanged})
		if err != nil {
			t.Fatal(err)
		}

		// Enable twice; membership is unchanged the second time but a
		// notification is journaled for both calls.
		if err := l.SetMintAgent(ctx, creator, carol, true); err != nil {
			t.Fatal(err)
		}
		if err := l.SetMintAgent(ctx, creator, carol, true); err != nil {
			t.Fatal(err)
		}

		after, err := l.Events(ctx, event.QueryOpts{Type: event.TypeMintAgentChanged})
		if err != nil {
			t.Fatal(err)
		}
		if len(after)-len(before) != 2 {
			t.Fatalf("notifications = %d, want 2", len(after)-len(before))
		}
		last := after[len(after)-1]
		if last.To != carol || !last.Enabled {
			t.Errorf("last notification = %+v", last)
		}
	})
}

// ──────────────────────────────────────────────────
// Persistence
// ──────────────────────────────────────────────────

func TestRestartResumesState(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	l1 := tokenledger.New(s, tokenledger.Config{Symbol: "TST", Creator: creator})
	if err := l1.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := l1.Transfer(ctx, creator, bob, amount.FromUint64(250)); err != nil {
		t.Fatal(err)
	}
	if _, err := l1.Approve(ctx, creator, carol, amount.FromUint64(9)); err != nil {
		t.Fatal(err)
	}

	// A second engine over the same store resumes instead of re-running
	// genesis; its Config is ignored.
	l2 := tokenledger.New(s, tokenledger.Config{Symbol: "OTHER", Creator: bob})
	if err := l2.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if l2.Symbol() != "TST" {
		t.Errorf("symbol = %s, want persisted TST", l2.Symbol())
	}
	if got := l2.BalanceOf(bob).String(); got != "250" {
		t.Errorf("bob balance = %s, want 250", got)
	}
	if got := l2.AllowanceOf(creator, carol).String(); got != "9" {
		t.Errorf("allowance = %s, want 9", got)
	}
	if l2.Owner() != creator {
		t.Errorf("owner = %s, want creator", l2.Owner())
	}
	if got := l2.TotalSupply(); got.Cmp(initialSupply) != 0 {
		t.Errorf("supply = %s, want %s (no double genesis)", got, initialSupply)
	}

	// Sequence numbers continue rather than restart.
	events, err := l2.Events(ctx, event.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l2.Transfer(ctx, creator, bob, amount.FromUint64(1)); err != nil {
		t.Fatal(err)
	}
	after, err := l2.Events(ctx, event.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(events)+1 {
		t.Fatalf("events = %d, want %d", len(after), len(events)+1)
	}
	if after[len(after)-1].Seq != events[len(events)-1].Seq+1 {
		t.Errorf("seq %d does not continue from %d", after[len(after)-1].Seq, events[len(events)-1].Seq)
	}
}

// ──────────────────────────────────────────────────
// Plugins
// ──────────────────────────────────────────────────

// recordingPlugin captures every hook invocation for assertions.
type recordingPlugin struct {
	mu       sync.Mutex
	events   []*event.Event
	declined []*event.Event
}

func (p *recordingPlugin) Name() string { return "recording" }

func (p *recordingPlugin) OnTransfer(_ context.Context, e *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPlugin) OnTransferDeclined(_ context.Context, e *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.declined = append(p.declined, e)
	return nil
}

func (p *recordingPlugin) OnApproval(_ context.Context, e *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func TestPluginHooks(t *testing.T) {
	rec := &recordingPlugin{}
	s := memory.New()
	l := tokenledger.New(s, tokenledger.Config{Symbol: "TST", Creator: creator},
		tokenledger.WithPlugin(rec),
	)
	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	if _, err := l.Transfer(ctx, creator, bob, amount.FromUint64(10)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Approve(ctx, creator, bob, amount.FromUint64(5)); err != nil {
		t.Fatal(err)
	}
	// Declined: bob sends more than he holds.
	if _, err := l.Transfer(ctx, bob, carol, amount.FromUint64(999)); err != nil {
		t.Fatal(err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.events) != 2 {
		t.Fatalf("committed hooks = %d, want 2", len(rec.events))
	}
	if rec.events[0].Type != event.TypeTransfer || rec.events[1].Type != event.TypeApproval {
		t.Errorf("hook order = %s, %s", rec.events[0].Type, rec.events[1].Type)
	}
	if len(rec.declined) != 1 {
		t.Fatalf("declined hooks = %d, want 1", len(rec.declined))
	}
	if rec.declined[0].From != bob || rec.declined[0].To != carol {
		t.Errorf("declined record = %+v", rec.declined[0])
	}
}

func TestPluginRegistry(t *testing.T) {
	rec := &recordingPlugin{}
	l := tokenledger.New(memory.New(), tokenledger.Config{Creator: creator},
		tokenledger.WithPlugin(rec),
	)

	if l.Plugins().Count() != 1 {
		t.Fatalf("plugin count = %d, want 1", l.Plugins().Count())
	}
	if l.Plugins().Get("recording") == nil {
		t.Fatal("plugin not retrievable by name")
	}
	if l.Plugins().Get("missing") != nil {
		t.Fatal("unknown name should return nil")
	}

	// Duplicate names are rejected.
	if err := l.Plugins().Register(&recordingPlugin{}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}
