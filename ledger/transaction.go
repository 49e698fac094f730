package ledger

// TxKind distinguishes a fully-available transaction from one the local
// store only has a placeholder for -- a hash-only stub pulled in as
// somebody else's referenced ancestor but whose body never arrived. The
// walk treats HashOnly as an immediate termination signal since there is no
// body to validate against.
type TxKind byte

const (
	Full TxKind = iota
	HashOnly
)

func (k TxKind) String() string {
	if k == HashOnly {
		return "hash-only"
	}
	return "full"
}

// Transaction is the node's local view of one DAG vertex. SnapshotIndex is
// the milestone index that first confirmed it; 0 means unconfirmed.
type Transaction struct {
	Hash          Hash
	Trunk         Hash
	Branch        Hash
	Addr          Address
	Value         int64
	SnapshotIndex uint32
	Kind          TxKind
	Signature     []byte
	PublicKey     []byte

	// MilestoneIndex is non-zero when this transaction is itself a
	// milestone, independent of SnapshotIndex (which records confirmation
	// by some *other*, later milestone).
	MilestoneIndex uint32
}

func (tx *Transaction) IsMilestone() bool {
	return tx.MilestoneIndex > 0
}

// Confirmed reports whether a milestone has already included tx.
func (tx *Transaction) Confirmed() bool {
	return tx.SnapshotIndex > 0
}
