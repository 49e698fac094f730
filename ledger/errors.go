package ledger

import "fmt"

// ErrNotFound is returned by a Store/DagView lookup for a hash the local
// node does not have.
type ErrNotFound struct {
	Hash Hash
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Hash.Short())
}

// ErrIntegrity marks a violation of the DAG's acyclicity assumption (a
// corrupt store presenting a cycle), an orphaned reference, or a rating
// fold contradiction. It aborts the entire tip selection call -- unlike a
// NotFound or a walk-local termination, it is never a normal outcome.
type ErrIntegrity struct {
	Reason string
}

func (e *ErrIntegrity) Error() string {
	return fmt.Sprintf("integrity error: %s", e.Reason)
}
