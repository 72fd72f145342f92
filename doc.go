// Package tokenledger provides an embeddable fungible-token ledger for Go
// applications.
//
// Tokenledger is designed as a library, not a service. Import it directly
// into your Go application and drive it with explicit caller identities.
// It provides:
//
//   - Per-account balances, allowances and total supply over checked
//     256-bit arithmetic (no silent wraparound, ever)
//   - Strictly serialized, all-or-nothing operations: a failure anywhere
//     inside an operation leaves the ledger exactly as it was
//   - An append-only event journal (transfer, approval, mint, burn,
//     membership and ownership changes) with queryable history
//   - Owner/mint-agent access control with explicit caller identity on
//     every mutating call
//   - Pluggable persistence: in-memory, SQLite, Postgres and MongoDB
//   - Plugin hooks observing every committed state change
//
// # Quick Start
//
// Create a ledger with your preferred store:
//
//	import (
//	    "github.com/xraph/tokenledger"
//	    "github.com/xraph/tokenledger/store/memory"
//	)
//
//	creator := tokenledger.HexToAddress("0x00000000000000000000000000000000000000aa")
//
//	l := tokenledger.New(memory.New(), tokenledger.Config{
//	    Name:    "Example Token",
//	    Symbol:  "EXT",
//	    Creator: creator,
//	})
//
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// On first start the full initial supply (1,000,000 whole units scaled by
// 18 decimals unless configured otherwise) is credited to the creator,
// who becomes the owner and sole mint agent. On later starts the
// persisted state is restored and Config is ignored.
//
// # Core Concepts
//
// Every mutating operation names its caller explicitly; there is no
// ambient identity:
//
//	ok, err := l.Transfer(ctx, alice, bob, tokenledger.FromUint64(100))
//
// Transfer is deliberately two-valued: ok == false with a nil error means
// the transfer was declined inline (short balance or zero value) with no
// state change, while an error means the call itself was invalid.
// TransferFrom treats the same shortfalls as hard errors; client code
// relies on that asymmetry.
//
// Allowances follow the zero-first discipline: a non-zero allowance must
// be set to zero before it can be re-approved to a new non-zero value,
// or Approve fails with ErrAllowanceRace. IncreaseApproval and
// DecreaseApproval compose safely without that restriction.
//
// # Persistence
//
// State persists as a snapshot plus the event journal. With eager
// snapshots (the default) every committed operation is immediately
// durable; WithEagerSnapshots(false) defers persistence to Checkpoint
// and Stop. Reads are always served from live memory.
//
// # TypeID
//
// Journal and snapshot records use TypeID for globally unique, type-safe
// identifiers:
//
//	evt_01h2xcejqtf2nbrexx3vqjhp41   // Event ID
//	snap_01h455vb4pex5vsknk084sn02q  // Snapshot ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of records.
package tokenledger
