package ledger

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// ContentHash derives the Hash a transaction would be addressed by from its
// immutable fields: trunk, branch, sender address, value, and signature.
// SnapshotIndex, Kind and MilestoneIndex are confirmation-time/local-view
// bookkeeping and take no part in it, so re-confirming or re-deriving a
// transaction never changes its identity.
func ContentHash(trunk, branch Hash, addr Address, value int64, signature []byte) Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// New256 with a nil key never errors; a non-nil err means the
		// blake2b package itself is broken.
		panic(err)
	}
	h.Write(trunk[:])
	h.Write(branch[:])
	h.Write(addr[:])

	var valueBuf [8]byte
	binary.LittleEndian.PutUint64(valueBuf[:], uint64(value))
	h.Write(valueBuf[:])
	h.Write(signature)

	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Seal computes and assigns tx's content hash in place, the way a wallet
// finalizes a transaction before submitting it to the network, and returns
// that hash.
func (tx *Transaction) Seal() Hash {
	tx.Hash = ContentHash(tx.Trunk, tx.Branch, tx.Addr, tx.Value, tx.Signature)
	return tx.Hash
}
