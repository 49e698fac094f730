package store

import (
	"sort"
	"sync"

	"github.com/lunfardo314/tipselect/ledger"
)

// Memory is an in-memory Store, used by tests and the demo CLI's
// non-persistent mode. Approver sets are maintained incrementally as
// transactions are added, mirroring the materialized-relation invariant
// spec.md §3 describes ("this relation is materialized in the store").
//
// Access pattern follows the teacher's UTXOTangle: a single RWMutex guards
// a couple of plain maps, short critical sections, no lock held across
// caller-visible work (see utangle/utangle.go's GetVertex/HasTransactionOnTangle).
type Memory struct {
	mutex     sync.RWMutex
	txs       map[ledger.Hash]*ledger.Transaction
	approvers map[ledger.Hash]map[ledger.Hash]struct{}
	balances  map[ledger.Address]int64
}

func NewMemory() *Memory {
	return &Memory{
		txs:       make(map[ledger.Hash]*ledger.Transaction),
		approvers: make(map[ledger.Hash]map[ledger.Hash]struct{}),
		balances:  make(map[ledger.Address]int64),
	}
}

// Add inserts tx and records it as an approver of its trunk and branch.
// This is the store-mutation path spec.md assigns to "the external
// ingest/gossip path", reconstructed here only so tests can build fixture
// DAGs.
func (m *Memory) Add(tx *ledger.Transaction) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	cp := *tx
	m.txs[tx.Hash] = &cp
	for _, parent := range []ledger.Hash{tx.Trunk, tx.Branch} {
		if parent.IsNull() {
			continue
		}
		set, ok := m.approvers[parent]
		if !ok {
			set = make(map[ledger.Hash]struct{})
			m.approvers[parent] = set
		}
		set[tx.Hash] = struct{}{}
	}
}

func (m *Memory) SetBalance(addr ledger.Address, balance int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.balances[addr] = balance
}

func (m *Memory) Get(h ledger.Hash) (*ledger.Transaction, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tx, ok := m.txs[h]
	if !ok {
		return nil, false
	}
	cp := *tx
	return &cp, true
}

func (m *Memory) ApproversOf(h ledger.Hash) []ledger.Hash {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	set := m.approvers[h]
	ret := make([]ledger.Hash, 0, len(set))
	for a := range set {
		ret = append(ret, a)
	}
	// Deterministic ordering makes fixture-driven tests reproducible; the
	// core itself must not rely on this order (spec.md §4.2 "worklist
	// order does not affect the final mapping").
	sort.Slice(ret, func(i, j int) bool {
		return string(ret[i][:]) < string(ret[j][:])
	})
	return ret
}

func (m *Memory) MilestoneAtOrAfter(minIndex uint32) (*ledger.Transaction, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var best *ledger.Transaction
	for _, tx := range m.txs {
		if tx.MilestoneIndex == 0 || tx.MilestoneIndex < minIndex {
			continue
		}
		if best == nil || tx.MilestoneIndex < best.MilestoneIndex {
			best = tx
		}
	}
	if best == nil {
		return nil, false
	}
	cp := *best
	return &cp, true
}

func (m *Memory) SnapshotBalance(addr ledger.Address) int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.balances[addr]
}
