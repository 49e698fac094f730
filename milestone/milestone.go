// Package milestone is the Milestone collaborator tip selection consumes
// (spec.md §3, §6): the latest-seen index, the latest index whose full
// history is locally solid, and that solid milestone's hash. Milestone
// issuance consensus is out of scope -- this package only exposes the
// three observable values and lets an external tracker (the real node's
// milestone-processing work process) advance them.
package milestone

import (
	"sync"

	"github.com/lunfardo314/tipselect/ledger"
	"go.uber.org/atomic"
)

// Tracker is consumed by TipSelector at exactly one point per call
// (spec.md §4.7 step 2), then treated as stable for the remainder of that
// call -- see spec.md §5's "monotonic milestone snapshot" guarantee.
type Tracker interface {
	LatestIndex() uint32
	LatestSolidIndex() uint32
	LatestSolidHash() ledger.Hash
}

// Snapshot is the stable triple TipSelector reads once at call entry.
type Snapshot struct {
	LatestIndex      uint32
	LatestSolidIndex uint32
	LatestSolidHash  ledger.Hash
}

func Read(t Tracker) Snapshot {
	return Snapshot{
		LatestIndex:      t.LatestIndex(),
		LatestSolidIndex: t.LatestSolidIndex(),
		LatestSolidHash:  t.LatestSolidHash(),
	}
}

// InMemory is a Tracker an ingest/milestone-processing work process
// advances as new milestones solidify, grounded on the teacher's
// sequencer/tippool.go latestMilestones map (atomic fields behind a short
// critical section, no lock held across caller-visible work).
type InMemory struct {
	mutex            sync.RWMutex
	latestIndex      atomic.Uint32
	latestSolidIndex atomic.Uint32
	latestSolidHash  ledger.Hash
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) LatestIndex() uint32 {
	return m.latestIndex.Load()
}

func (m *InMemory) LatestSolidIndex() uint32 {
	return m.latestSolidIndex.Load()
}

func (m *InMemory) LatestSolidHash() ledger.Hash {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.latestSolidHash
}

// AdvanceLatest records a newly-seen milestone index, irrespective of
// solidity.
func (m *InMemory) AdvanceLatest(index uint32) {
	for {
		cur := m.latestIndex.Load()
		if index <= cur {
			return
		}
		if m.latestIndex.CAS(cur, index) {
			return
		}
	}
}

// AdvanceSolid records a newly-solidified milestone: its index and hash.
func (m *InMemory) AdvanceSolid(index uint32, hash ledger.Hash) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if index <= m.latestSolidIndex.Load() {
		return
	}
	m.latestSolidIndex.Store(index)
	m.latestSolidHash = hash
	m.AdvanceLatest(index)
}
