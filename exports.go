package tokenledger

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/event"
)

// Re-export common types for convenience so users don't have to import
// the leaf packages for ordinary use.

// Amount is re-exported from the amount package.
type Amount = amount.Amount

// Address identifies an account. The zero value is the null identifier
// used as the synthetic mint/burn counterparty.
type Address = common.Address

// Event is re-exported from the event package.
type Event = event.Event

// EventType is re-exported from the event package.
type EventType = event.Type

// Re-export Amount constructors.
var (
	ZeroAmount  = amount.Zero
	FromUint64  = amount.FromUint64
	FromDecimal = amount.FromDecimal
	MustParse   = amount.MustParse
)

// HexToAddress parses a hex-encoded account address.
var HexToAddress = common.HexToAddress
