// Package ledgerdiff implements LedgerDiff (spec.md §4.4): an incrementally
// updated running balance delta that must stay non-negative, against
// confirmed snapshot balances, along every candidate path a walk takes.
package ledgerdiff

import (
	"github.com/gammazero/deque"
	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/util"
)

// State is LedgerState from spec.md §3: the set of hashes already folded
// into diff, and the diff itself.
type State struct {
	Visited util.Set[ledger.Hash]
	Diff    map[ledger.Address]int64
}

func NewState() *State {
	return &State{
		Visited: util.NewSet[ledger.Hash](),
		Diff:    make(map[ledger.Address]int64),
	}
}

// Clone deep-copies State for callers needing a walk-local copy
// (spec.md §5: "walk-local clones are used where the walk must
// tentatively mutate"). UpdateDiff builds its own scratch copy directly.
func (s *State) Clone() *State {
	ret := &State{
		Visited: s.Visited.Clone(),
		Diff:    make(map[ledger.Address]int64, len(s.Diff)),
	}
	for a, v := range s.Diff {
		ret.Diff[a] = v
	}
	return ret
}

type Differ struct {
	view *dag.View
}

func New(view *dag.View) *Differ {
	return &Differ{view: view}
}

// UpdateDiff folds into state the balance changes implied by h and its
// unvisited trunk/branch ancestors, atomically: either every insertion
// succeeds and no address's running balance goes negative, or state is
// left completely unmodified. Returns false (with state untouched) if any
// ancestor in the closure is missing from the store or if the fold would
// drive any address negative.
func (d *Differ) UpdateDiff(state *State, h ledger.Hash) (bool, error) {
	scratchVisited := state.Visited.Clone()
	scratchDiff := make(map[ledger.Address]int64, len(state.Diff))
	for a, v := range state.Diff {
		scratchDiff[a] = v
	}

	if scratchVisited.Contains(h) {
		// already folded in -- a no-op success.
		return true, nil
	}

	fresh := make([]*ledger.Transaction, 0)
	local := util.NewSet[ledger.Hash]()

	wl := new(deque.Deque[ledger.Hash])
	wl.PushBack(h)
	for wl.Len() > 0 {
		x := wl.PopFront()
		if scratchVisited.Contains(x) || local.Contains(x) {
			continue
		}
		tx, err := d.view.Get(x)
		if err != nil {
			// Ancestor missing from the local store: the closure is not
			// solid, so the whole candidate fold is rejected.
			return false, nil
		}
		local.Insert(x)
		fresh = append(fresh, tx)
		if !tx.Trunk.IsNull() {
			wl.PushBack(tx.Trunk)
		}
		if !tx.Branch.IsNull() {
			wl.PushBack(tx.Branch)
		}
	}

	for _, tx := range fresh {
		scratchDiff[tx.Addr] += tx.Value
	}

	for addr, delta := range scratchDiff {
		if d.view.SnapshotBalance(addr)+delta < 0 {
			return false, nil
		}
	}

	local.ForEach(func(e ledger.Hash) bool {
		scratchVisited.Insert(e)
		return true
	})

	state.Visited = scratchVisited
	state.Diff = scratchDiff
	return true, nil
}
