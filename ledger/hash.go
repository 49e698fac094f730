// Package ledger defines the data model shared by every component of the
// tip selection core: transaction hashes, the transaction record itself,
// and the address type balances are kept against.
package ledger

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the width of a transaction content hash.
const HashSize = 32

// Hash identifies a transaction by content hash.
type Hash [HashSize]byte

// HashNull is the genesis sentinel: "no transaction", used as a default
// trunk/branch, as the "no extra tip" marker, and as the fold accumulator's
// zero element.
var HashNull = Hash{}

func (h Hash) IsNull() bool {
	return h == HashNull
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short renders the first 8 hex characters, the way the teacher's
// WrappedTx.IDVeryShort trims long identifiers for log lines.
func (h Hash) Short() string {
	s := h.String()
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}

func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("ledger: invalid hash hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("ledger: expected %d bytes, got %d", HashSize, len(b))
	}
	var ret Hash
	copy(ret[:], b)
	return ret, nil
}

// Address is the account a balance delta accrues against.
type Address [HashSize]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}
