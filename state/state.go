// Package state holds the whole mutable ledger state: balances,
// allowances, total supply, ownership and mint agent membership.
//
// State is not safe for concurrent use; the engine serializes access and
// mutates a deep Clone, swapping it in only after the whole operation
// succeeds. That protocol is what gives every operation all-or-nothing
// semantics without per-field undo logic.
package state

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/id"
)

// Metadata is the immutable descriptive configuration of the token.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// State is the complete ledger state.
type State struct {
	meta        Metadata
	owner       common.Address
	mintAgents  map[common.Address]bool
	balances    map[common.Address]amount.Amount
	allowances  map[common.Address]map[common.Address]amount.Amount
	totalSupply amount.Amount
	seq         uint64
}

// New creates an empty state with the given metadata.
func New(meta Metadata) *State {
	return &State{
		meta:       meta,
		mintAgents: make(map[common.Address]bool),
		balances:   make(map[common.Address]amount.Amount),
		allowances: make(map[common.Address]map[common.Address]amount.Amount),
	}
}

// Meta returns the token metadata.
func (s *State) Meta() Metadata { return s.meta }

// Owner returns the current administrative owner.
func (s *State) Owner() common.Address { return s.owner }

// SetOwner replaces the administrative owner.
func (s *State) SetOwner(addr common.Address) { s.owner = addr }

// IsMintAgent reports mint agent membership.
func (s *State) IsMintAgent(addr common.Address) bool { return s.mintAgents[addr] }

// SetMintAgent sets mint agent membership.
func (s *State) SetMintAgent(addr common.Address, enabled bool) {
	if enabled {
		s.mintAgents[addr] = true
		return
	}
	delete(s.mintAgents, addr)
}

// Balance returns the balance for addr; zero for accounts never touched.
func (s *State) Balance(addr common.Address) amount.Amount {
	return s.balances[addr]
}

// SetBalance stores a balance. A zero balance removes the entry so a
// drained account is indistinguishable from one that never existed.
func (s *State) SetBalance(addr common.Address, v amount.Amount) {
	if v.IsZero() {
		delete(s.balances, addr)
		return
	}
	s.balances[addr] = v
}

// Allowance returns the remaining amount spender may move out of owner's
// balance; zero when never approved.
func (s *State) Allowance(owner, spender common.Address) amount.Amount {
	return s.allowances[owner][spender]
}

// SetAllowance stores an allowance, removing the entry when it drops to zero.
func (s *State) SetAllowance(owner, spender common.Address, v amount.Amount) {
	if v.IsZero() {
		if row, ok := s.allowances[owner]; ok {
			delete(row, spender)
			if len(row) == 0 {
				delete(s.allowances, owner)
			}
		}
		return
	}
	row, ok := s.allowances[owner]
	if !ok {
		row = make(map[common.Address]amount.Amount)
		s.allowances[owner] = row
	}
	row[spender] = v
}

// TotalSupply returns the current total supply.
func (s *State) TotalSupply() amount.Amount { return s.totalSupply }

// SetTotalSupply replaces the total supply.
func (s *State) SetTotalSupply(v amount.Amount) { s.totalSupply = v }

// Seq returns the sequence number of the last committed event.
func (s *State) Seq() uint64 { return s.seq }

// NextSeq advances and returns the event sequence number.
func (s *State) NextSeq() uint64 {
	s.seq++
	return s.seq
}

// Clone returns a deep copy. Amounts are values, so copying the maps is
// sufficient; nothing in a clone aliases the original.
func (s *State) Clone() *State {
	c := &State{
		meta:        s.meta,
		owner:       s.owner,
		mintAgents:  make(map[common.Address]bool, len(s.mintAgents)),
		balances:    make(map[common.Address]amount.Amount, len(s.balances)),
		allowances:  make(map[common.Address]map[common.Address]amount.Amount, len(s.allowances)),
		totalSupply: s.totalSupply,
		seq:         s.seq,
	}
	for k, v := range s.mintAgents {
		c.mintAgents[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for owner, row := range s.allowances {
		crow := make(map[common.Address]amount.Amount, len(row))
		for spender, v := range row {
			crow[spender] = v
		}
		c.allowances[owner] = crow
	}
	return c
}

// SupplyBalanced reports whether the sum of all balances equals the total
// supply. A false return means the ledger is corrupted.
func (s *State) SupplyBalanced() bool {
	sum := amount.Zero()
	for _, v := range s.balances {
		var err error
		sum, err = sum.Add(v)
		if err != nil {
			return false
		}
	}
	return sum.Cmp(s.totalSupply) == 0
}

// Snapshot is the serializable form of State used by store backends.
type Snapshot struct {
	ID          id.SnapshotID                                       `json:"id"`
	Meta        Metadata                                            `json:"meta"`
	Owner       common.Address                                      `json:"owner"`
	MintAgents  []common.Address                                    `json:"mint_agents"`
	Balances    map[common.Address]amount.Amount                    `json:"balances"`
	Allowances  map[common.Address]map[common.Address]amount.Amount `json:"allowances"`
	TotalSupply amount.Amount                                       `json:"total_supply"`
	Seq         uint64                                              `json:"seq"`
	TakenAt     time.Time                                           `json:"taken_at"`
}

// Snapshot captures a deep serializable copy of the state.
func (s *State) Snapshot() *Snapshot {
	snap := &Snapshot{
		ID:          id.NewSnapshotID(),
		Meta:        s.meta,
		Owner:       s.owner,
		MintAgents:  make([]common.Address, 0, len(s.mintAgents)),
		Balances:    make(map[common.Address]amount.Amount, len(s.balances)),
		Allowances:  make(map[common.Address]map[common.Address]amount.Amount, len(s.allowances)),
		TotalSupply: s.totalSupply,
		Seq:         s.seq,
		TakenAt:     time.Now().UTC(),
	}
	for agent := range s.mintAgents {
		snap.MintAgents = append(snap.MintAgents, agent)
	}
	for k, v := range s.balances {
		snap.Balances[k] = v
	}
	for owner, row := range s.allowances {
		crow := make(map[common.Address]amount.Amount, len(row))
		for spender, v := range row {
			crow[spender] = v
		}
		snap.Allowances[owner] = crow
	}
	return snap
}

// FromSnapshot reconstructs a State from its serialized form.
func FromSnapshot(snap *Snapshot) *State {
	s := New(snap.Meta)
	s.owner = snap.Owner
	s.totalSupply = snap.TotalSupply
	s.seq = snap.Seq
	for _, agent := range snap.MintAgents {
		s.mintAgents[agent] = true
	}
	for k, v := range snap.Balances {
		s.SetBalance(k, v)
	}
	for owner, row := range snap.Allowances {
		for spender, v := range row {
			s.SetAllowance(owner, spender, v)
		}
	}
	return s
}
