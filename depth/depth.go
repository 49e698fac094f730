// Package depth implements DepthGuard (spec.md §4.3): the max-depth cutoff
// anchored to a milestone index, deciding whether a candidate tip's
// confirmed history falls far enough behind the current milestone window
// that approving it would reach into an already-pruned or stale part of
// the DAG.
package depth

import (
	"github.com/gammazero/deque"
	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/util"
)

// Cache is the max-depth cache from spec.md §3: hashes already proven
// not-below-max-depth, scoped to a single top-level TipSelector call and
// shared across every walk within it. A later BelowMaxDepth search that
// reaches a cached hash stops there and returns true.
type Cache = util.Set[ledger.Hash]

func NewCache() Cache {
	return util.NewSet[ledger.Hash]()
}

type Guard struct {
	view *dag.View
}

func New(view *dag.View) *Guard {
	return &Guard{view: view}
}

// BelowMaxDepth reports whether tip's confirmed history lies below the
// window opened by minAllowedIndex (spec.md §4.7:
// latest_solid_milestone_index - 2*depth). A confirmed tip within the
// window is never below max depth; otherwise the tip is below max depth
// if backward BFS through trunk/branch (descending only through
// unconfirmed transactions) reaches a confirmation older than the window,
// or reaches an unconfirmed hash that is already in cache. When the BFS
// finds neither, tip is added to cache and the result is false.
func (g *Guard) BelowMaxDepth(tip ledger.Hash, minAllowedIndex uint32, cache Cache) bool {
	tx, err := g.view.Get(tip)
	if err != nil {
		// Unknown tip: nothing to cut off against, so it cannot be judged
		// below-max-depth by this guard. The caller's NotFound handling
		// (spec.md §7) governs what happens next.
		return false
	}
	if tx.SnapshotIndex >= minAllowedIndex {
		return false
	}

	visited := util.NewSet[ledger.Hash]()
	wl := new(deque.Deque[ledger.Hash])
	wl.PushBack(tip)

	for wl.Len() > 0 {
		h := wl.PopFront()
		if !visited.InsertNew(h) {
			continue
		}

		htx, err := g.view.Get(h)
		if err != nil {
			continue
		}
		if htx.SnapshotIndex != 0 && htx.SnapshotIndex < minAllowedIndex {
			return true
		}
		if htx.SnapshotIndex == 0 {
			if cache.Contains(h) {
				// h was already proven not-below-max-depth by an earlier
				// call within this selection; reaching it ends this search
				// with a true result rather than descending further.
				return true
			}
			if !htx.Trunk.IsNull() {
				wl.PushBack(htx.Trunk)
			}
			if !htx.Branch.IsNull() {
				wl.PushBack(htx.Branch)
			}
		}
	}

	cache.Insert(tip)
	return false
}
