// Package solidity implements SolidityOracle (spec.md §4.5): whether a
// transaction's full trunk/branch ancestry is present in the local store.
package solidity

import (
	"github.com/gammazero/deque"
	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/util"
)

// Oracle is stateless with respect to the caller -- it holds only the
// DagView it reads through, the way the teacher's attacher performs
// solidity checks directly against the DAG rather than against any
// per-caller cache.
type Oracle struct {
	view *dag.View
}

func New(view *dag.View) *Oracle {
	return &Oracle{view: view}
}

// IsSolid reports whether h's entire trunk/branch closure is locally
// present. The traversal is bounded in practice: once it reaches a
// transaction already confirmed by some milestone (SnapshotIndex > 0), that
// transaction's own ancestry was already proven solid when it was
// confirmed, so the walk does not descend past it.
func (o *Oracle) IsSolid(h ledger.Hash) bool {
	if h.IsNull() {
		return true
	}

	visited := util.NewSet[ledger.Hash]()
	wl := new(deque.Deque[ledger.Hash])
	wl.PushBack(h)

	for wl.Len() > 0 {
		x := wl.PopFront()
		if x.IsNull() || !visited.InsertNew(x) {
			continue
		}

		tx, err := o.view.Get(x)
		if err != nil {
			return false
		}
		if tx.Kind == ledger.HashOnly {
			return false
		}
		if tx.Confirmed() {
			continue
		}
		wl.PushBack(tx.Trunk)
		wl.PushBack(tx.Branch)
	}
	return true
}
