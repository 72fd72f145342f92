package mongo

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"

	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/state"
)

// ==================== Snapshot model ====================

// snapshotModel is the single current-state document. Documents are
// whole snapshots; the fixed _id keeps the collection single-document.
type snapshotModel struct {
	grove.BaseModel `grove:"table:token_snapshots"`

	ID          string                       `grove:"id,pk"        bson:"_id"`
	SnapshotID  string                       `grove:"snapshot_id"  bson:"snapshot_id"`
	Name        string                       `grove:"name"         bson:"name"`
	Symbol      string                       `grove:"symbol"       bson:"symbol"`
	Decimals    uint8                        `grove:"decimals"     bson:"decimals"`
	Owner       string                       `grove:"owner"        bson:"owner"`
	MintAgents  []string                     `grove:"mint_agents"  bson:"mint_agents"`
	Balances    map[string]string            `grove:"balances"     bson:"balances"`
	Allowances  map[string]map[string]string `grove:"allowances"   bson:"allowances"`
	TotalSupply string                       `grove:"total_supply" bson:"total_supply"`
	Seq         uint64                       `grove:"seq"          bson:"seq"`
	TakenAt     time.Time                    `grove:"taken_at"     bson:"taken_at"`
}

// currentSnapshotID is the fixed document key for the live snapshot.
const currentSnapshotID = "current"

func toSnapshotModel(snap *state.Snapshot) *snapshotModel {
	m := &snapshotModel{
		ID:          currentSnapshotID,
		SnapshotID:  snap.ID.String(),
		Name:        snap.Meta.Name,
		Symbol:      snap.Meta.Symbol,
		Decimals:    snap.Meta.Decimals,
		Owner:       snap.Owner.Hex(),
		MintAgents:  make([]string, 0, len(snap.MintAgents)),
		Balances:    make(map[string]string, len(snap.Balances)),
		Allowances:  make(map[string]map[string]string, len(snap.Allowances)),
		TotalSupply: snap.TotalSupply.String(),
		Seq:         snap.Seq,
		TakenAt:     snap.TakenAt,
	}

	for _, addr := range snap.MintAgents {
		m.MintAgents = append(m.MintAgents, addr.Hex())
	}
	for addr, v := range snap.Balances {
		m.Balances[addr.Hex()] = v.String()
	}
	for owner, row := range snap.Allowances {
		mrow := make(map[string]string, len(row))
		for spender, v := range row {
			mrow[spender.Hex()] = v.String()
		}
		m.Allowances[owner.Hex()] = mrow
	}

	return m
}

func fromSnapshotModel(m *snapshotModel) (*state.Snapshot, error) {
	snapID, err := id.ParseSnapshotID(m.SnapshotID)
	if err != nil {
		return nil, err
	}
	totalSupply, err := amount.FromDecimal(m.TotalSupply)
	if err != nil {
		return nil, err
	}

	snap := &state.Snapshot{
		ID: snapID,
		Meta: state.Metadata{
			Name:     m.Name,
			Symbol:   m.Symbol,
			Decimals: m.Decimals,
		},
		Owner:       common.HexToAddress(m.Owner),
		MintAgents:  make([]common.Address, 0, len(m.MintAgents)),
		Balances:    make(map[common.Address]amount.Amount, len(m.Balances)),
		Allowances:  make(map[common.Address]map[common.Address]amount.Amount, len(m.Allowances)),
		TotalSupply: totalSupply,
		Seq:         m.Seq,
		TakenAt:     m.TakenAt,
	}

	for _, addr := range m.MintAgents {
		snap.MintAgents = append(snap.MintAgents, common.HexToAddress(addr))
	}
	for addr, raw := range m.Balances {
		v, err := amount.FromDecimal(raw)
		if err != nil {
			return nil, err
		}
		snap.Balances[common.HexToAddress(addr)] = v
	}
	for owner, row := range m.Allowances {
		srow := make(map[common.Address]amount.Amount, len(row))
		for spender, raw := range row {
			v, err := amount.FromDecimal(raw)
			if err != nil {
				return nil, err
			}
			srow[common.HexToAddress(spender)] = v
		}
		snap.Allowances[common.HexToAddress(owner)] = srow
	}

	return snap, nil
}

// ==================== Event model ====================

type eventModel struct {
	grove.BaseModel `grove:"table:token_events"`

	ID        string    `grove:"id,pk"     bson:"_id"`
	Seq       uint64    `grove:"seq"       bson:"seq"`
	Type      string    `grove:"type"      bson:"type"`
	FromAddr  string    `grove:"from_addr" bson:"from_addr"`
	ToAddr    string    `grove:"to_addr"   bson:"to_addr"`
	Value     string    `grove:"value"     bson:"value"`
	Enabled   bool      `grove:"enabled"   bson:"enabled"`
	Timestamp time.Time `grove:"timestamp" bson:"timestamp"`
}

func toEventModel(e *event.Event) *eventModel {
	return &eventModel{
		ID:        e.ID.String(),
		Seq:       e.Seq,
		Type:      string(e.Type),
		FromAddr:  e.From.Hex(),
		ToAddr:    e.To.Hex(),
		Value:     e.Value.String(),
		Enabled:   e.Enabled,
		Timestamp: e.Timestamp,
	}
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	eventID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	value, err := amount.FromDecimal(m.Value)
	if err != nil {
		return nil, err
	}

	return &event.Event{
		ID:        eventID,
		Seq:       m.Seq,
		Type:      event.Type(m.Type),
		From:      common.HexToAddress(m.FromAddr),
		To:        common.HexToAddress(m.ToAddr),
		Value:     value,
		Enabled:   m.Enabled,
		Timestamp: m.Timestamp,
	}, nil
}
