package tokenledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/plugin"
	"github.com/xraph/tokenledger/state"
	"github.com/xraph/tokenledger/store"
)

// Config describes the token created on first start. It is consulted only
// when the backing store holds no snapshot yet; on restart the persisted
// state wins.
type Config struct {
	// Name and Symbol are descriptive metadata.
	Name   string
	Symbol string

	// Decimals is the number of base-10 fractional digits. Defaults to 18.
	Decimals uint8

	// Creator receives the full initial supply and becomes the initial
	// owner and sole mint agent. Required; the zero address is rejected.
	Creator common.Address

	// InitialUnits is the initial supply in whole token units, scaled by
	// Decimals at genesis. Defaults to 1,000,000.
	InitialUnits uint64
}

// Ledger is the token engine. Every mutating operation runs inside a
// single exclusive critical section over a clone of the state, so a
// failure partway through leaves the live state untouched.
type Ledger struct {
	cfg     Config
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	mu      sync.RWMutex
	state   *state.State
	started bool

	eagerSnapshots bool
}

// New creates a new Ledger instance backed by s. The ledger holds no
// state until Start loads a snapshot or runs genesis.
func New(s store.Store, cfg Config, opts ...Option) *Ledger {
	if cfg.Decimals == 0 {
		cfg.Decimals = 18
	}
	if cfg.InitialUnits == 0 {
		cfg.InitialUnits = 1_000_000
	}

	l := &Ledger{
		cfg:            cfg,
		store:          s,
		plugins:        plugin.NewRegistry(),
		logger:         slog.Default(),
		eagerSnapshots: true,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithEagerSnapshots controls whether a snapshot is persisted after every
// committed operation. On by default; turning it off trades restart
// freshness for write throughput, with Checkpoint available for manual
// persistence.
func WithEagerSnapshots(enabled bool) Option {
	return func(l *Ledger) {
		l.eagerSnapshots = enabled
	}
}

// Start migrates the store, then restores the persisted state or runs
// genesis when the store is empty.
func (l *Ledger) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return ErrAlreadyStarted
	}

	if err := l.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	snap, err := l.store.LoadSnapshot(ctx)
	switch {
	case err == nil:
		l.state = state.FromSnapshot(snap)
		l.logger.Info("ledger restored",
			"symbol", l.state.Meta().Symbol,
			"total_supply", l.state.TotalSupply(),
			"seq", l.state.Seq(),
		)
	case IsSnapshotNotFound(err):
		if err := l.genesis(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("load snapshot: %w", err)
	}

	l.started = true
	l.plugins.EmitInit(ctx, l)

	return nil
}

// genesis creates the initial state: full supply credited to the creator,
// who becomes owner and sole mint agent. Journaled as a transfer from the
// zero address followed by a mint.
func (l *Ledger) genesis(ctx context.Context) error {
	if l.cfg.Creator == (common.Address{}) {
		return fmt.Errorf("%w: creator address required", ErrZeroAddress)
	}

	supply, err := amount.Scale(l.cfg.InitialUnits, l.cfg.Decimals)
	if err != nil {
		return fmt.Errorf("scale initial supply: %w", err)
	}

	st := state.New(state.Metadata{
		Name:     l.cfg.Name,
		Symbol:   l.cfg.Symbol,
		Decimals: l.cfg.Decimals,
	})
	st.SetOwner(l.cfg.Creator)
	st.SetMintAgent(l.cfg.Creator, true)
	st.SetBalance(l.cfg.Creator, supply)
	st.SetTotalSupply(supply)

	events := []*event.Event{
		event.NewTransfer(st.NextSeq(), common.Address{}, l.cfg.Creator, supply),
		event.NewMint(st.NextSeq(), l.cfg.Creator, supply),
	}

	if err := l.store.AppendEvents(ctx, events); err != nil {
		return fmt.Errorf("journal genesis: %w", err)
	}
	if err := l.store.SaveSnapshot(ctx, st.Snapshot()); err != nil {
		return fmt.Errorf("save genesis snapshot: %w", err)
	}

	l.state = st

	l.logger.Info("ledger created",
		"symbol", l.cfg.Symbol,
		"creator", l.cfg.Creator,
		"total_supply", supply,
	)

	return nil
}

// Stop persists a final snapshot and shuts down the store.
func (l *Ledger) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return ErrNotStarted
	}

	ctx := context.Background()
	if err := l.store.SaveSnapshot(ctx, l.state.Snapshot()); err != nil {
		l.logger.Warn("final snapshot failed", "error", err)
	}

	l.plugins.EmitShutdown(ctx)
	l.started = false

	return l.store.Close()
}

// Plugins exposes the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// Commit protocol
// ──────────────────────────────────────────────────

// commit runs mutate against a deep clone of the live state under the
// exclusive section. The clone is swapped in only after both the mutation
// and the journal append succeed; any error discards the clone wholesale,
// which is what makes every operation all-or-nothing. A mutation that
// returns no events is treated as a no-op and nothing is swapped.
func (l *Ledger) commit(ctx context.Context, mutate func(st *state.State) ([]*event.Event, error)) ([]*event.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return nil, ErrNotStarted
	}

	clone := l.state.Clone()

	events, err := mutate(clone)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	if err := l.store.AppendEvents(ctx, events); err != nil {
		return nil, fmt.Errorf("journal append: %w", err)
	}

	l.state = clone
	l.logger.Debug("committed", "events", len(events), "seq", clone.Seq())

	if l.eagerSnapshots {
		if err := l.store.SaveSnapshot(ctx, clone.Snapshot()); err != nil {
			// The journal already has the events; a stale snapshot is
			// recoverable, so log instead of failing the commit.
			l.logger.Warn("snapshot save failed", "error", err)
		}
	}

	return events, nil
}

// ──────────────────────────────────────────────────
// Transfers
// ──────────────────────────────────────────────────

// Transfer moves value from caller to `to`. Returns false with no error,
// no state change and no journaled event when the caller's balance is
// short or value is zero; that is a normal unsuccessful result, not a
// failure. A zero `to` address is rejected outright.
func (l *Ledger) Transfer(ctx context.Context, caller, to common.Address, value amount.Amount) (bool, error) {
	if to == (common.Address{}) {
		return false, fmt.Errorf("%w: transfer target", ErrZeroAddress)
	}

	declined := false
	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if value.IsZero() || st.Balance(caller).Lt(value) {
			declined = true
			return nil, nil
		}

		// Debit first, then credit against the updated balance, so a
		// self-transfer nets out instead of double-counting.
		fromBal, err := st.Balance(caller).Sub(value)
		if err != nil {
			return nil, err
		}
		st.SetBalance(caller, fromBal)

		toBal, err := st.Balance(to).Add(value)
		if err != nil {
			return nil, err
		}
		st.SetBalance(to, toBal)

		return []*event.Event{event.NewTransfer(st.NextSeq(), caller, to, value)}, nil
	})
	if err != nil {
		return false, err
	}

	if declined {
		record := &event.Event{
			Type:      event.TypeTransfer,
			From:      caller,
			To:        to,
			Value:     value,
			Timestamp: time.Now().UTC(),
		}
		l.plugins.EmitTransferDeclined(ctx, record)
		return false, nil
	}

	l.plugins.EmitTransfer(ctx, events[0])
	return true, nil
}

// TransferFrom moves value from `from` to `to` on the strength of the
// allowance `from` granted the calling spender. Unlike Transfer, a short
// balance or allowance here is a hard error.
func (l *Ledger) TransferFrom(ctx context.Context, spender, from, to common.Address, value amount.Amount) (bool, error) {
	if to == (common.Address{}) {
		return false, fmt.Errorf("%w: transfer target", ErrZeroAddress)
	}

	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if st.Balance(from).Lt(value) {
			return nil, fmt.Errorf("%w: balance %s short of %s", ErrInsufficientBalance, st.Balance(from), value)
		}
		if st.Allowance(from, spender).Lt(value) {
			return nil, fmt.Errorf("%w: allowance %s short of %s", ErrInsufficientAllowance, st.Allowance(from, spender), value)
		}

		// Credit first, then debit against the updated balance, so a
		// transfer back to `from` nets out while still consuming the
		// allowance.
		toBal, err := st.Balance(to).Add(value)
		if err != nil {
			return nil, err
		}
		st.SetBalance(to, toBal)

		fromBal, err := st.Balance(from).Sub(value)
		if err != nil {
			return nil, err
		}
		st.SetBalance(from, fromBal)

		remaining, err := st.Allowance(from, spender).Sub(value)
		if err != nil {
			return nil, err
		}
		st.SetAllowance(from, spender, remaining)

		return []*event.Event{event.NewTransfer(st.NextSeq(), from, to, value)}, nil
	})
	if err != nil {
		return false, err
	}

	if len(events) > 0 {
		l.plugins.EmitTransfer(ctx, events[0])
	}
	return true, nil
}

// ──────────────────────────────────────────────────
// Allowances
// ──────────────────────────────────────────────────

// Approve sets the allowance caller grants spender to exactly value.
// Re-approving a non-zero allowance to a new non-zero value fails with
// ErrAllowanceRace; the caller must zero the allowance first. This blocks
// the classic double-spend where a spender races the owner's adjustment.
func (l *Ledger) Approve(ctx context.Context, caller, spender common.Address, value amount.Amount) (bool, error) {
	if spender == (common.Address{}) {
		return false, fmt.Errorf("%w: spender", ErrZeroAddress)
	}

	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if !value.IsZero() && !st.Allowance(caller, spender).IsZero() {
			return nil, ErrAllowanceRace
		}
		st.SetAllowance(caller, spender, value)
		return []*event.Event{event.NewApproval(st.NextSeq(), caller, spender, value)}, nil
	})
	if err != nil {
		return false, err
	}

	l.plugins.EmitApproval(ctx, events[0])
	return true, nil
}

// IncreaseApproval raises the allowance caller grants spender by
// addedValue. Unlike Approve it composes safely with in-flight spending,
// so it carries no race guard. Fails only on arithmetic overflow.
func (l *Ledger) IncreaseApproval(ctx context.Context, caller, spender common.Address, addedValue amount.Amount) (bool, error) {
	if spender == (common.Address{}) {
		return false, fmt.Errorf("%w: spender", ErrZeroAddress)
	}

	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		total, err := st.Allowance(caller, spender).Add(addedValue)
		if err != nil {
			return nil, err
		}
		st.SetAllowance(caller, spender, total)
		return []*event.Event{event.NewApproval(st.NextSeq(), caller, spender, total)}, nil
	})
	if err != nil {
		return false, err
	}

	l.plugins.EmitApproval(ctx, events[0])
	return true, nil
}

// DecreaseApproval lowers the allowance caller grants spender by
// subtractedValue, clamping at zero when the decrement exceeds the
// current allowance. Never fails on amounts.
func (l *Ledger) DecreaseApproval(ctx context.Context, caller, spender common.Address, subtractedValue amount.Amount) (bool, error) {
	if spender == (common.Address{}) {
		return false, fmt.Errorf("%w: spender", ErrZeroAddress)
	}

	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		current := st.Allowance(caller, spender)
		var remaining amount.Amount
		if current.Lt(subtractedValue) {
			remaining = amount.Zero()
		} else {
			var err error
			remaining, err = current.Sub(subtractedValue)
			if err != nil {
				return nil, err
			}
		}
		st.SetAllowance(caller, spender, remaining)
		return []*event.Event{event.NewApproval(st.NextSeq(), caller, spender, remaining)}, nil
	})
	if err != nil {
		return false, err
	}

	l.plugins.EmitApproval(ctx, events[0])
	return true, nil
}

// ──────────────────────────────────────────────────
// Supply management
// ──────────────────────────────────────────────────

// Mint creates value new units credited to the calling mint agent,
// growing total supply. Journaled as a transfer from the zero address
// followed by a mint record.
func (l *Ledger) Mint(ctx context.Context, caller common.Address, value amount.Amount) error {
	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if !st.IsMintAgent(caller) {
			return nil, fmt.Errorf("%w: %s is not a mint agent", ErrUnauthorized, caller)
		}

		supply, err := st.TotalSupply().Add(value)
		if err != nil {
			return nil, err
		}
		bal, err := st.Balance(caller).Add(value)
		if err != nil {
			return nil, err
		}
		st.SetTotalSupply(supply)
		st.SetBalance(caller, bal)

		return []*event.Event{
			event.NewTransfer(st.NextSeq(), common.Address{}, caller, value),
			event.NewMint(st.NextSeq(), caller, value),
		}, nil
	})
	if err != nil {
		return err
	}

	l.plugins.EmitTransfer(ctx, events[0])
	l.plugins.EmitMint(ctx, events[1])
	return nil
}

// BurnFrom destroys value units out of `from`'s balance, shrinking total
// supply. Only the owner may burn other accounts' balances. Requires a
// positive value fully covered by the balance.
func (l *Ledger) BurnFrom(ctx context.Context, caller, from common.Address, value amount.Amount) error {
	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if caller != st.Owner() {
			return nil, fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
		}
		return burn(st, from, value)
	})
	if err != nil {
		return err
	}

	l.plugins.EmitTransfer(ctx, events[0])
	l.plugins.EmitBurn(ctx, events[1])
	return nil
}

// BurnSelf destroys value units out of the calling mint agent's own
// balance. This is the self-service counterpart to BurnFrom: agents may
// retire supply they hold, and only the owner may reach into anyone
// else's balance.
func (l *Ledger) BurnSelf(ctx context.Context, caller common.Address, value amount.Amount) error {
	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if !st.IsMintAgent(caller) {
			return nil, fmt.Errorf("%w: %s is not a mint agent", ErrUnauthorized, caller)
		}
		return burn(st, caller, value)
	})
	if err != nil {
		return err
	}

	l.plugins.EmitTransfer(ctx, events[0])
	l.plugins.EmitBurn(ctx, events[1])
	return nil
}

// burn is the shared state mutation behind BurnFrom and BurnSelf.
// Authorization is the caller's responsibility.
func burn(st *state.State, from common.Address, value amount.Amount) ([]*event.Event, error) {
	if value.IsZero() {
		return nil, fmt.Errorf("%w: burn value must be positive", ErrInvalidArgument)
	}
	if st.Balance(from).Lt(value) {
		return nil, fmt.Errorf("%w: balance %s short of burn value %s", ErrInvalidArgument, st.Balance(from), value)
	}

	bal, err := st.Balance(from).Sub(value)
	if err != nil {
		return nil, err
	}
	supply, err := st.TotalSupply().Sub(value)
	if err != nil {
		return nil, err
	}
	st.SetBalance(from, bal)
	st.SetTotalSupply(supply)

	return []*event.Event{
		event.NewTransfer(st.NextSeq(), from, common.Address{}, value),
		event.NewBurn(st.NextSeq(), from, value),
	}, nil
}

// ──────────────────────────────────────────────────
// Administration
// ──────────────────────────────────────────────────

// TransferOwnership hands the administrative role to newOwner. The new
// owner must differ from the current one and must not be the zero
// address. Balances and allowances are untouched.
func (l *Ledger) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if caller != st.Owner() {
			return nil, fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
		}
		if newOwner == (common.Address{}) {
			return nil, fmt.Errorf("%w: new owner", ErrZeroAddress)
		}
		if newOwner == st.Owner() {
			return nil, fmt.Errorf("%w: new owner equals current owner", ErrInvalidArgument)
		}

		previous := st.Owner()
		st.SetOwner(newOwner)

		return []*event.Event{event.NewOwnershipTransferred(st.NextSeq(), previous, newOwner)}, nil
	})
	if err != nil {
		return err
	}

	l.plugins.EmitOwnershipTransferred(ctx, events[0])
	return nil
}

// SetMintAgent sets addr's mint agent membership to enabled. A
// notification is journaled on every call, including no-op repeats, so
// monitors always see an authoritative membership record.
func (l *Ledger) SetMintAgent(ctx context.Context, caller, addr common.Address, enabled bool) error {
	events, err := l.commit(ctx, func(st *state.State) ([]*event.Event, error) {
		if caller != st.Owner() {
			return nil, fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
		}

		st.SetMintAgent(addr, enabled)

		return []*event.Event{event.NewMintAgentChanged(st.NextSeq(), addr, enabled)}, nil
	})
	if err != nil {
		return err
	}

	l.plugins.EmitMintAgentChanged(ctx, events[0])
	return nil
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// BalanceOf returns account's balance; zero for accounts never touched.
func (l *Ledger) BalanceOf(account common.Address) amount.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return amount.Zero()
	}
	return l.state.Balance(account)
}

// AllowanceOf returns the remaining amount spender may move out of
// owner's balance; zero when never approved.
func (l *Ledger) AllowanceOf(owner, spender common.Address) amount.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return amount.Zero()
	}
	return l.state.Allowance(owner, spender)
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() amount.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return amount.Zero()
	}
	return l.state.TotalSupply()
}

// Owner returns the current administrative owner.
func (l *Ledger) Owner() common.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return common.Address{}
	}
	return l.state.Owner()
}

// IsMintAgent reports whether addr is currently a mint agent.
func (l *Ledger) IsMintAgent(addr common.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return false
	}
	return l.state.IsMintAgent(addr)
}

// Name returns the token name.
func (l *Ledger) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return l.cfg.Name
	}
	return l.state.Meta().Name
}

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return l.cfg.Symbol
	}
	return l.state.Meta().Symbol
}

// Decimals returns the number of fractional digits.
func (l *Ledger) Decimals() uint8 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == nil {
		return l.cfg.Decimals
	}
	return l.state.Meta().Decimals
}

// Events lists journaled events matching opts, oldest first.
func (l *Ledger) Events(ctx context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	return l.store.ListEvents(ctx, opts)
}

// Checkpoint persists a snapshot of the current state immediately,
// regardless of the eager-snapshot setting.
func (l *Ledger) Checkpoint(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.started {
		return ErrNotStarted
	}
	return l.store.SaveSnapshot(ctx, l.state.Snapshot())
}
