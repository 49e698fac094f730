// Package dag implements DagView (spec.md §4.1): a read-only projection of
// the external Store, narrowed to exactly the operations the rest of the
// tip selection core needs. It adds no state of its own and performs no
// mutation -- every call is a direct (possibly blocking, see spec.md §5)
// read through to Store.
package dag

import (
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/store"
)

type View struct {
	s store.Store
}

func NewView(s store.Store) *View {
	return &View{s: s}
}

// Get fails with *ledger.ErrNotFound if h is absent from the local store.
func (v *View) Get(h ledger.Hash) (*ledger.Transaction, error) {
	tx, ok := v.s.Get(h)
	if !ok {
		return nil, &ledger.ErrNotFound{Hash: h}
	}
	return tx, nil
}

// Approvers returns the (possibly empty) set of transactions that
// reference h as trunk or branch. This is a snapshot taken at the instant
// of the call; spec.md §5 permits a later call for the same hash to
// legitimately observe a larger set under concurrent ingest.
func (v *View) Approvers(h ledger.Hash) []ledger.Hash {
	return v.s.ApproversOf(h)
}

// FindClosestNextMilestone returns the milestone transaction with the
// smallest milestone index >= minIndex, or ok=false if none is known.
func (v *View) FindClosestNextMilestone(minIndex uint32) (*ledger.Transaction, bool) {
	return v.s.MilestoneAtOrAfter(minIndex)
}

func (v *View) SnapshotBalance(addr ledger.Address) int64 {
	return v.s.SnapshotBalance(addr)
}
