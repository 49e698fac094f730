// Package rating implements RatingEngine (spec.md §4.2): an iterative,
// cycle-safe computation of cumulative-weight ratings over the sub-DAG
// reachable (via the approver relation) from an entry transaction.
package rating

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/global"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/util"
)

const TraceTag = "rating"

// Map is RatingMap from spec.md §3: hash -> cumulative weight, capped at
// util.CapInt64 at every addition.
type Map map[ledger.Hash]int64

// Engine computes Map entries for the approver-closure of an entry hash,
// the way the teacher's worklist-driven traversals (e.g.
// core/attacher.attacher) fold child state bottom-up over a DAG, but here
// driven by a gammazero/deque worklist the way util/consumer.Queue drives
// its own FIFO over the same library.
type Engine struct {
	view *dag.View
	g    *global.Global
}

func New(view *dag.View, g *global.Global) *Engine {
	return &Engine{view: view, g: g}
}

// Update populates ratings with cumulative-weight entries for every
// transaction in the sub-DAG rooted at entry (approvers-closure). visited
// and extraTip determine base(h) per spec.md §4.2. cancel is polled once
// per worklist pop (spec.md §5).
//
// Already-rated hashes (ratings must be shared read-only across
// concurrent walks that pre-seed it, per spec.md §5) are treated as
// terminal and never recomputed -- this also makes a second call with the
// same inputs produce an identical map (spec.md §8 idempotence).
func (e *Engine) Update(visited util.Set[ledger.Hash], entry ledger.Hash, ratings Map, extraTip ledger.Hash, cancel func() bool) error {
	analyzed := util.NewSet[ledger.Hash]()
	seen := util.NewSet[ledger.Hash]()
	seen.Insert(entry)

	wl := new(deque.Deque[ledger.Hash])
	wl.PushFront(entry)

	pops := 0
	// A legitimate acyclic DAG re-visits a hash at most once per distinct
	// approver it waits on, plus the original push; a generous multiple of
	// the distinct-hash count bounds that. A corrupt, cyclic store would
	// otherwise loop forever -- this is the cycle detector spec.md §9
	// requires ("the analyzed set breaks it at the cost of dropped
	// weight -- treat as IntegrityError").
	bound := func() int { return 8*seen.Len() + 64 }

	for wl.Len() > 0 {
		if cancel != nil && cancel() {
			return errCancelled
		}
		pops++
		if pops > bound() {
			return &ledger.ErrIntegrity{Reason: fmt.Sprintf("rating: worklist did not converge from entry %s -- likely cycle in approver relation", entry.Short())}
		}

		h := wl.PopFront()
		if _, already := ratings[h]; already {
			continue
		}

		approvers := e.view.Approvers(h)
		pushedBack := false
		allRated := true
		for _, a := range approvers {
			if a == h {
				continue
			}
			if _, ok := ratings[a]; ok {
				continue
			}
			if !pushedBack {
				wl.PushFront(h)
				pushedBack = true
			}
			wl.PushFront(a)
			seen.Insert(a)
			allRated = false
		}
		if !allRated {
			continue
		}
		if !analyzed.InsertNew(h) {
			continue
		}

		rating := base(h, visited, extraTip)
		for _, a := range approvers {
			if r, ok := ratings[a]; ok {
				rating = util.CapSum(rating, r, util.CapInt64)
			}
		}
		ratings[h] = rating

		e.g.Tracef(TraceTag, "rated %s = %d (approvers=%d)", h.Short(), rating, len(approvers))
	}
	return nil
}

func base(h ledger.Hash, visited util.Set[ledger.Hash], extraTip ledger.Hash) int64 {
	if extraTip == ledger.HashNull && visited.Contains(h) {
		return 0
	}
	return 1
}

var errCancelled = fmt.Errorf("rating: cancelled")

// ErrCancelled reports whether err is the sentinel Update returns when
// cancel() fired mid-traversal.
func ErrCancelled(err error) bool { return err == errCancelled }
