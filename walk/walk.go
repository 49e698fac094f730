// Package walk implements RandomWalker (spec.md §4.6): one biased walk
// from an entry point down to a tail, weighted by cumulative rating so the
// walk concentrates on the heavy subtree while leaving the lighter branches
// reachable for liveness.
package walk

import (
	"math"
	"math/rand"

	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/depth"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/ledgerdiff"
	"github.com/lunfardo314/tipselect/rating"
	"github.com/lunfardo314/tipselect/solidity"
)

// Bias is the exponent alpha in (delta rating)^-alpha from spec.md §4.6.
// alpha=3 concentrates probability on approvers close in cumulative
// weight to their parent -- the "heavy" subtree -- while leaving nonzero
// probability on lesser branches.
const Bias = 3

type Walker struct {
	view     *dag.View
	solidity *solidity.Oracle
	diff     *ledgerdiff.Differ
	guard    *depth.Guard
	rater    *rating.Engine
}

func New(view *dag.View, sol *solidity.Oracle, diff *ledgerdiff.Differ, guard *depth.Guard, rater *rating.Engine) *Walker {
	return &Walker{view: view, solidity: sol, diff: diff, guard: guard, rater: rater}
}

// Walk performs a single walk from start. ratings is shared read-mostly
// state seeded by the caller before the first walk (spec.md §5) -- this
// walk extends it in place for any tip it visits that the seed pass
// didn't already cover, under the single-writer discipline the caller
// enforces (a per-walk clone, or a mutex around calls into this method).
// ledgerState is always a walk-local clone the caller throws away
// afterward, never the call-frame's authoritative diff.
//
// cancel is polled once per iteration; a true return aborts the walk with
// ErrCancelled, which TipSelector surfaces to its caller per spec.md §7.
func (w *Walker) Walk(
	rng *rand.Rand,
	ledgerState *ledgerdiff.State,
	ratings rating.Map,
	start, extraTip ledger.Hash,
	minAllowedIndex uint32,
	depthCache depth.Cache,
	cancel func() bool,
) (tail ledger.Hash, err error) {
	tip := start
	tail = start

	for {
		if cancel != nil && cancel() {
			return tail, ErrCancelled
		}

		tx, getErr := w.view.Get(tip)
		if getErr != nil {
			// NotFound mid-walk terminates the walk normally (spec.md §7);
			// the caller is expected to log it, not treat it as an error.
			return tail, nil
		}
		approvers := w.view.Approvers(tip)

		if tx.Kind == ledger.HashOnly {
			return tail, nil
		}
		if !w.solidity.IsSolid(tip) {
			return tail, nil
		}
		ok, diffErr := w.diff.UpdateDiff(ledgerState, tip)
		if diffErr != nil {
			return tail, diffErr
		}
		if !ok {
			return tail, nil
		}
		if w.guard.BelowMaxDepth(tip, minAllowedIndex, depthCache) {
			return tail, nil
		}
		if tip == extraTip {
			// Matches the original tip-selection algorithm (spec.md §4.6,
			// original_source/src/model/tips_manager.rs random_walk): the
			// extra_tip break-check runs before "tail <- tip", so the walk
			// stops at extra_tip without descending past it, but the
			// returned tail is extra_tip's immediate predecessor on this
			// walk, not extra_tip itself.
			return tail, nil
		}

		tail = tip

		if len(approvers) == 0 {
			return tail, nil
		}
		if len(approvers) == 1 {
			tip = approvers[0]
			continue
		}

		if _, ok := ratings[tip]; !ok {
			if rateErr := w.rater.Update(ledgerState.Visited, tip, ratings, extraTip, cancel); rateErr != nil {
				return tail, rateErr
			}
		}
		next, pickErr := pickNext(rng, ratings, tip, approvers)
		if pickErr != nil {
			return tail, pickErr
		}
		tip = next
	}
}

func pickNext(rng *rand.Rand, ratings rating.Map, tip ledger.Hash, approvers []ledger.Hash) (ledger.Hash, error) {
	rTip := ratings[tip]

	weights := make([]float64, len(approvers))
	sum := 0.0
	for i, a := range approvers {
		delta := float64(rTip - ratings[a])
		wgt := math.Pow(delta, -Bias)
		if math.IsInf(wgt, 1) {
			// Delta collapsed to zero: the reciprocal power overflows.
			// spec.md §4.6 treats this approver as deterministically
			// chosen rather than letting the draw divide by infinity.
			return a, nil
		}
		weights[i] = wgt
		sum += wgt
	}

	if sum == 0 || math.IsNaN(sum) {
		// All weights collapsed to zero: fall back to a uniform choice
		// among the approvers (spec.md §4.6 edge case).
		return approvers[rng.Intn(len(approvers))], nil
	}

	u := rng.Float64() * sum
	cum := 0.0
	for i, wgt := range weights {
		cum += wgt
		if u <= cum {
			return approvers[i], nil
		}
	}
	return approvers[len(approvers)-1], nil
}

var ErrCancelled = walkCancelled{}

type walkCancelled struct{}

func (walkCancelled) Error() string { return "walk: cancelled" }
