package sqlite

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"

	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/state"
)

// ==================== Meta model ====================

// metaModel is the single-row table carrying token metadata and the
// scalar snapshot fields. The fixed primary key keeps it single-row.
type metaModel struct {
	grove.BaseModel `grove:"table:token_meta"`

	ID          int       `grove:"id,pk"`
	SnapshotID  string    `grove:"snapshot_id"`
	Name        string    `grove:"name"`
	Symbol      string    `grove:"symbol"`
	Decimals    uint8     `grove:"decimals"`
	Owner       string    `grove:"owner"`
	TotalSupply string    `grove:"total_supply"`
	Seq         uint64    `grove:"seq"`
	TakenAt     time.Time `grove:"taken_at"`
}

// ==================== Balance / allowance / agent models ====================

type balanceModel struct {
	grove.BaseModel `grove:"table:token_balances"`

	Address string `grove:"address,pk"`
	Balance string `grove:"balance"`
}

type allowanceModel struct {
	grove.BaseModel `grove:"table:token_allowances"`

	Owner   string `grove:"owner,pk"`
	Spender string `grove:"spender,pk"`
	Value   string `grove:"value"`
}

type mintAgentModel struct {
	grove.BaseModel `grove:"table:token_mint_agents"`

	Address string `grove:"address,pk"`
}

// ==================== Event model ====================

type eventModel struct {
	grove.BaseModel `grove:"table:token_events"`

	ID        string    `grove:"id,pk"`
	Seq       uint64    `grove:"seq"`
	Type      string    `grove:"type"`
	FromAddr  string    `grove:"from_addr"`
	ToAddr    string    `grove:"to_addr"`
	Value     string    `grove:"value"`
	Enabled   bool      `grove:"enabled"`
	Timestamp time.Time `grove:"timestamp"`
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

// ==================== Snapshot assembly ====================

func toSnapshotModels(snap *state.Snapshot) (*metaModel, []balanceModel, []allowanceModel, []mintAgentModel) {
	meta := &metaModel{
		ID:          1,
		SnapshotID:  snap.ID.String(),
		Name:        snap.Meta.Name,
		Symbol:      snap.Meta.Symbol,
		Decimals:    snap.Meta.Decimals,
		Owner:       snap.Owner.Hex(),
		TotalSupply: snap.TotalSupply.String(),
		Seq:         snap.Seq,
		TakenAt:     snap.TakenAt,
	}

	balances := make([]balanceModel, 0, len(snap.Balances))
	for addr, v := range snap.Balances {
		balances = append(balances, balanceModel{
			Address: addr.Hex(),
			Balance: v.String(),
		})
	}

	allowances := make([]allowanceModel, 0)
	for owner, row := range snap.Allowances {
		for spender, v := range row {
			allowances = append(allowances, allowanceModel{
				Owner:   owner.Hex(),
				Spender: spender.Hex(),
				Value:   v.String(),
			})
		}
	}

	agents := make([]mintAgentModel, 0, len(snap.MintAgents))
	for _, addr := range snap.MintAgents {
		agents = append(agents, mintAgentModel{Address: addr.Hex()})
	}

	return meta, balances, allowances, agents
}

func fromSnapshotModels(meta *metaModel, balances []balanceModel, allowances []allowanceModel, agents []mintAgentModel) (*state.Snapshot, error) {
	snapID, err := id.ParseSnapshotID(meta.SnapshotID)
	if err != nil {
		return nil, err
	}
	totalSupply, err := amount.FromDecimal(meta.TotalSupply)
	if err != nil {
		return nil, err
	}

	snap := &state.Snapshot{
		ID: snapID,
		Meta: state.Metadata{
			Name:     meta.Name,
			Symbol:   meta.Symbol,
			Decimals: meta.Decimals,
		},
		Owner:       common.HexToAddress(meta.Owner),
		MintAgents:  make([]common.Address, 0, len(agents)),
		Balances:    make(map[common.Address]amount.Amount, len(balances)),
		Allowances:  make(map[common.Address]map[common.Address]amount.Amount),
		TotalSupply: totalSupply,
		Seq:         meta.Seq,
		TakenAt:     meta.TakenAt,
	}

	for i := range balances {
		v, err := amount.FromDecimal(balances[i].Balance)
		if err != nil {
			return nil, err
		}
		snap.Balances[common.HexToAddress(balances[i].Address)] = v
	}

	for i := range allowances {
		v, err := amount.FromDecimal(allowances[i].Value)
		if err != nil {
			return nil, err
		}
		owner := common.HexToAddress(allowances[i].Owner)
		row, ok := snap.Allowances[owner]
		if !ok {
			row = make(map[common.Address]amount.Amount)
			snap.Allowances[owner] = row
		}
		row[common.HexToAddress(allowances[i].Spender)] = v
	}

	for i := range agents {
		snap.MintAgents = append(snap.MintAgents, common.HexToAddress(agents[i].Address))
	}

	return snap, nil
}
