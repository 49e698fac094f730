package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/lunfardo314/tipselect/ledger"
)

// Badger is an on-disk Store backed by dgraph-io/badger/v4, the same K/V
// engine the teacher's multistate package sits on (via
// unitrie/adaptors/badger_adaptor). Only the subset of layout needed to
// serve the Store contract is implemented here -- the persistent wire
// format of a real node's transaction store is out of scope (spec.md §1).
type Badger struct {
	db *badger.DB
}

var (
	prefixTx        = []byte("t/")
	prefixApprover  = []byte("a/")
	prefixBalance   = []byte("b/")
	prefixMilestone = []byte("m/")
)

func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: opening badger at %s: %w", dir, err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func txKey(h ledger.Hash) []byte {
	return append(append([]byte{}, prefixTx...), h[:]...)
}

func approverKey(parent, child ledger.Hash) []byte {
	k := append(append([]byte{}, prefixApprover...), parent[:]...)
	return append(k, child[:]...)
}

func milestoneKey(index uint32) []byte {
	k := append([]byte{}, prefixMilestone...)
	idx := make([]byte, 4)
	binary.BigEndian.PutUint32(idx, index)
	return append(k, idx...)
}

func balanceKey(addr ledger.Address) []byte {
	return append(append([]byte{}, prefixBalance...), addr[:]...)
}

type gobTx struct {
	Hash                                        ledger.Hash
	Trunk, Branch                                ledger.Hash
	Addr                                         ledger.Address
	Value                                        int64
	SnapshotIndex, MilestoneIndex                uint32
	Kind                                         ledger.TxKind
	Signature, PublicKey                         []byte
}

// Add writes tx and indexes it under its trunk/branch's approver-set
// prefix, the same materialize-on-write strategy store/memory.go uses.
func (b *Badger) Add(tx *ledger.Transaction) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobTx{
		Hash: tx.Hash, Trunk: tx.Trunk, Branch: tx.Branch, Addr: tx.Addr,
		Value: tx.Value, SnapshotIndex: tx.SnapshotIndex, MilestoneIndex: tx.MilestoneIndex,
		Kind: tx.Kind, Signature: tx.Signature, PublicKey: tx.PublicKey,
	}); err != nil {
		return fmt.Errorf("store: encoding transaction: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(txKey(tx.Hash), buf.Bytes()); err != nil {
			return err
		}
		if tx.MilestoneIndex > 0 {
			if err := txn.Set(milestoneKey(tx.MilestoneIndex), tx.Hash[:]); err != nil {
				return err
			}
		}
		for _, parent := range []ledger.Hash{tx.Trunk, tx.Branch} {
			if parent.IsNull() {
				continue
			}
			if err := txn.Set(approverKey(parent, tx.Hash), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Badger) SetBalance(addr ledger.Address, balance int64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(balance))
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(balanceKey(addr), buf)
	})
}

func (b *Badger) Get(h ledger.Hash) (*ledger.Transaction, bool) {
	var gt gobTx
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(txKey(h))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&gt)
		})
	})
	if err != nil {
		return nil, false
	}
	return &ledger.Transaction{
		Hash: gt.Hash, Trunk: gt.Trunk, Branch: gt.Branch, Addr: gt.Addr,
		Value: gt.Value, SnapshotIndex: gt.SnapshotIndex, MilestoneIndex: gt.MilestoneIndex,
		Kind: gt.Kind, Signature: gt.Signature, PublicKey: gt.PublicKey,
	}, true
}

func (b *Badger) ApproversOf(h ledger.Hash) []ledger.Hash {
	prefix := append(append([]byte{}, prefixApprover...), h[:]...)
	var ret []ledger.Hash
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			var child ledger.Hash
			copy(child[:], key[len(prefix):])
			ret = append(ret, child)
		}
		return nil
	})
	return ret
}

func (b *Badger) MilestoneAtOrAfter(minIndex uint32) (*ledger.Transaction, bool) {
	var hash ledger.Hash
	found := false
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixMilestone
		it := txn.NewIterator(opts)
		defer it.Close()
		seek := milestoneKey(minIndex)
		for it.Seek(seek); it.ValidForPrefix(prefixMilestone); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				copy(hash[:], val)
				return nil
			})
			if err != nil {
				return err
			}
			found = true
			return nil
		}
		return nil
	})
	if !found {
		return nil, false
	}
	return b.Get(hash)
}

func (b *Badger) SnapshotBalance(addr ledger.Address) int64 {
	var ret int64
	_ = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(balanceKey(addr))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			ret = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	return ret
}
