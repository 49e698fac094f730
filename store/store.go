// Package store defines the Store collaborator the tip selection core
// consumes (spec.md §6): transaction lookup, approver-set lookup, nearest
// milestone search, and account balance lookup. The persistent on-disk
// format is out of scope for this module -- Store is a read interface, and
// the two implementations here (in-memory, badger-backed) exist only to
// exercise it in tests and the demo CLI. No core package mutates a Store.
package store

import "github.com/lunfardo314/tipselect/ledger"

// Store is the external collaborator every DagView is built on.
type Store interface {
	// Get returns the transaction for h, or ok=false if the local node
	// does not have it.
	Get(h ledger.Hash) (tx *ledger.Transaction, ok bool)

	// ApproversOf returns the hashes of transactions that reference h as
	// trunk or branch. A snapshot at the instant of the call -- see
	// spec.md §5 on the racing model.
	ApproversOf(h ledger.Hash) []ledger.Hash

	// MilestoneAtOrAfter returns the milestone transaction with the
	// smallest milestone index >= minIndex, or ok=false if none is known.
	MilestoneAtOrAfter(minIndex uint32) (tx *ledger.Transaction, ok bool)

	// SnapshotBalance is the confirmed balance of addr as of the latest
	// solid milestone -- the baseline LedgerDiff's running delta is
	// checked against.
	SnapshotBalance(addr ledger.Address) int64
}
