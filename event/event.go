// Package event defines the append-only notification records emitted by
// the ledger after every committed state change. Events carry no
// behavioral weight inside the ledger; they exist for external monitors.
package event

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/id"
)

// Type identifies the kind of state change an event records.
type Type string

// Event type constants.
const (
	TypeTransfer             Type = "transfer"
	TypeApproval             Type = "approval"
	TypeMint                 Type = "mint"
	TypeBurn                 Type = "burn"
	TypeMintAgentChanged     Type = "mint_agent_changed"
	TypeOwnershipTransferred Type = "ownership_transferred"
)

// Event is a single committed notification record.
//
// Field use varies with Type:
//   - transfer: From → To moved Value; the zero address as From marks a
//     supply increase, as To a supply decrease.
//   - approval: From is the allowance owner, To the spender, Value the
//     new absolute allowance.
//   - mint: To received Value newly created units.
//   - burn: From had Value units destroyed.
//   - mint_agent_changed: To is the agent, Enabled its new membership.
//   - ownership_transferred: From is the previous owner, To the new one.
type Event struct {
	ID        id.EventID     `json:"id"`
	Seq       uint64         `json:"seq"`
	Type      Type           `json:"type"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Value     amount.Amount  `json:"value"`
	Enabled   bool           `json:"enabled,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewTransfer builds a transfer event.
func NewTransfer(seq uint64, from, to common.Address, value amount.Amount) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Seq:       seq,
		Type:      TypeTransfer,
		From:      from,
		To:        to,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// NewApproval builds an approval event carrying the new absolute allowance.
func NewApproval(seq uint64, owner, spender common.Address, value amount.Amount) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Seq:       seq,
		Type:      TypeApproval,
		From:      owner,
		To:        spender,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// NewMint builds a mint event for newly created supply credited to `to`.
func NewMint(seq uint64, to common.Address, value amount.Amount) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Seq:       seq,
		Type:      TypeMint,
		To:        to,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// NewBurn builds a burn event for supply destroyed out of `from`.
func NewBurn(seq uint64, from common.Address, value amount.Amount) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Seq:       seq,
		Type:      TypeBurn,
		From:      from,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// NewMintAgentChanged builds a mint agent membership event.
// Emitted on every SetMintAgent call, including no-op repeats.
func NewMintAgentChanged(seq uint64, agent common.Address, enabled bool) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Seq:       seq,
		Type:      TypeMintAgentChanged,
		To:        agent,
		Enabled:   enabled,
		Timestamp: time.Now().UTC(),
	}
}

// NewOwnershipTransferred builds an ownership transfer event.
func NewOwnershipTransferred(seq uint64, previous, next common.Address) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Seq:       seq,
		Type:      TypeOwnershipTransferred,
		From:      previous,
		To:        next,
		Timestamp: time.Now().UTC(),
	}
}

// QueryOpts filters journal reads. Zero values mean "no filter"; note the
// zero address therefore cannot be queried for directly — it only ever
// appears as the synthetic mint/burn counterparty.
type QueryOpts struct {
	Type     Type
	Address  common.Address // matches either From or To
	AfterSeq uint64         // exclusive lower bound
	Limit    int
	Offset   int
}
