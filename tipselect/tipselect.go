// Package tipselect implements TipSelector (spec.md §4.7): the facade
// that turns one depth/iterations/reference/extra_tip request into a tail
// hash, by seeding a RatingMap at an entry point, validating that entry
// against the ledger, running RandomWalker repeatedly, and tallying the
// resulting tails by plurality.
package tipselect

import (
	"fmt"
	"math/rand"

	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/depth"
	"github.com/lunfardo314/tipselect/global"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/ledgerdiff"
	"github.com/lunfardo314/tipselect/milestone"
	"github.com/lunfardo314/tipselect/rating"
	"github.com/lunfardo314/tipselect/solidity"
	"github.com/lunfardo314/tipselect/walk"
)

// MaxDepth is the hard ceiling on the caller-supplied depth (spec.md §6).
const MaxDepth = 15

const TraceTag = "tipselect"

// Config carries the tunables spec.md §6 lists under "Consumed ... Config".
type Config struct {
	MaxDepth            uint32
	MilestoneStartIndex uint32
	Testnet             bool
}

func DefaultConfig() Config {
	return Config{MaxDepth: MaxDepth}
}

// Request is transaction_to_approve's argument tuple (spec.md §4.7).
type Request struct {
	Reference ledger.Hash
	ExtraTip  ledger.Hash
	Depth     uint32
	Iterations uint32
}

// Selector wires the five collaborators a selection call needs. It holds
// no per-call state of its own -- every call builds its RatingMap,
// LedgerDiff state, and depth cache fresh, per spec.md §5's "owned by the
// call frame" policy.
type Selector struct {
	g         *global.Global
	view      *dag.View
	milestone milestone.Tracker
	rater     *rating.Engine
	guard     *depth.Guard
	differ    *ledgerdiff.Differ
	walker    *walk.Walker
	cfg       Config
}

func New(g *global.Global, view *dag.View, mt milestone.Tracker, cfg Config) *Selector {
	sol := solidity.New(view)
	rater := rating.New(view, g)
	guard := depth.New(view)
	differ := ledgerdiff.New(view)
	if cfg.MaxDepth == 0 || cfg.MaxDepth > MaxDepth {
		cfg.MaxDepth = MaxDepth
	}
	return &Selector{
		g:         g,
		view:      view,
		milestone: mt,
		rater:     rater,
		guard:     guard,
		differ:    differ,
		walker:    walk.New(view, sol, differ, guard, rater),
		cfg:       cfg,
	}
}

var (
	ErrCancelled = fmt.Errorf("tipselect: cancelled")

	// ErrNotSynced is returned instead of a plain nil-hash/nil-error result
	// so the RPC collaborator (spec.md §6) can tell "not synced" apart from
	// "no solid tip" -- the other nil-hash outcome (LedgerInconsistent, no
	// entry point available), which still surfaces as (nil, nil) plus a log
	// entry since the spec's error taxonomy (§7) gives it no distinct name.
	ErrNotSynced = fmt.Errorf("tipselect: not synced")
)

// SelectTip runs transaction_to_approve (spec.md §4.7). rng drives every
// walk's draws -- callers wanting spec.md §8's determinism property pass a
// rand.Rand seeded deterministically; the RPC server passes one seeded
// from the current time for each request.
//
// A nil hash with ErrNotSynced means NotSynced. A nil hash with a nil error
// means zero iterations were requested, or LedgerInconsistent or no entry
// point available ("no solid tip"),
// logged rather than treated as an error per spec.md §7. A nil hash with
// any other non-nil error means IntegrityError or Cancelled.
func (s *Selector) SelectTip(rng *rand.Rand, req Request, cancel func() bool) (*ledger.Hash, error) {
	depthReq := req.Depth
	if depthReq > s.cfg.MaxDepth {
		depthReq = s.cfg.MaxDepth
	}

	snap := milestone.Read(s.milestone)
	if snap.LatestSolidIndex <= s.cfg.MilestoneStartIndex && snap.LatestIndex != s.cfg.MilestoneStartIndex {
		s.g.Log().Infof("tipselect: not synced (solid=%d latest=%d start=%d)", snap.LatestSolidIndex, snap.LatestIndex, s.cfg.MilestoneStartIndex)
		return nil, ErrNotSynced
	}

	if req.Iterations == 0 {
		return nil, nil
	}

	entry, err := s.entryPoint(snap, req, depthReq)
	if err != nil {
		return nil, err
	}
	if entry.IsNull() {
		s.g.Log().Infof("tipselect: no solid entry point available")
		return nil, nil
	}

	ratings := make(rating.Map)
	state := ledgerdiff.NewState()

	if rateErr := s.rater.Update(state.Visited, entry, ratings, req.ExtraTip, cancel); rateErr != nil {
		if rating.ErrCancelled(rateErr) {
			return nil, ErrCancelled
		}
		return nil, rateErr
	}

	ok, diffErr := s.differ.UpdateDiff(state, entry)
	if diffErr != nil {
		return nil, diffErr
	}
	if !ok {
		s.g.Log().Infof("tipselect: entry point %s is ledger-inconsistent", entry.Short())
		return nil, nil
	}

	minAllowedIndex := subClampUint32(snap.LatestSolidIndex, 2*depthReq)
	depthCache := depth.NewCache()

	tally := make(map[ledger.Hash]int)
	var order []ledger.Hash
	for i := uint32(0); i < req.Iterations; i++ {
		if cancel != nil && cancel() {
			return nil, ErrCancelled
		}
		walkState := state.Clone()
		tail, walkErr := s.walker.Walk(rng, walkState, ratings, entry, req.ExtraTip, minAllowedIndex, depthCache, cancel)
		if walkErr != nil {
			if walkErr == walk.ErrCancelled || rating.ErrCancelled(walkErr) {
				return nil, ErrCancelled
			}
			return nil, walkErr
		}
		if _, seen := tally[tail]; !seen {
			order = append(order, tail)
		}
		tally[tail]++
		s.g.Tracef(TraceTag, "walk %d/%d from %s -> tail %s", i+1, req.Iterations, entry.Short(), tail.Short())
	}

	best := plurality(order, tally, rng)
	return &best, nil
}

// entryPoint implements spec.md §4.7 step 3, including the REDESIGN FLAGS
// correction: the latest_solid_index-depth-1 lower bound is always
// applied when extra_tip is set (the source failed to apply it in one
// branch; this always takes the milestone-seek path when extra_tip is
// non-null, matching the step's own branch structure).
func (s *Selector) entryPoint(snap milestone.Snapshot, req Request, depthReq uint32) (ledger.Hash, error) {
	if req.ExtraTip.IsNull() {
		if !req.Reference.IsNull() {
			return req.Reference, nil
		}
		return snap.LatestSolidHash, nil
	}

	minIndex := subClampUint32(snap.LatestSolidIndex, depthReq+1)
	if ms, ok := s.view.FindClosestNextMilestone(minIndex); ok {
		return ms.Hash, nil
	}
	return snap.LatestSolidHash, nil
}

func subClampUint32(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

// plurality selects the tail with the highest tally count, breaking ties
// by fair coin (spec.md §4.7 step 7). order preserves first-seen order so
// the coin flip is over a deterministic candidate list given rng.
func plurality(order []ledger.Hash, tally map[ledger.Hash]int, rng *rand.Rand) ledger.Hash {
	best := order[0]
	bestCount := tally[best]
	ties := []ledger.Hash{best}
	for _, h := range order[1:] {
		c := tally[h]
		switch {
		case c > bestCount:
			best, bestCount = h, c
			ties = ties[:0]
			ties = append(ties, h)
		case c == bestCount:
			ties = append(ties, h)
		}
	}
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[rng.Intn(len(ties))]
}
