package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	t.Run("null is null", func(t *testing.T) {
		require.True(t, HashNull.IsNull())
		var h Hash
		require.True(t, h.IsNull())
	})
	t.Run("hex round-trip", func(t *testing.T) {
		h := Hash{1, 2, 3, 4}
		parsed, err := HashFromHex(h.String())
		require.NoError(t, err)
		require.Equal(t, h, parsed)
	})
	t.Run("rejects bad hex", func(t *testing.T) {
		_, err := HashFromHex("not-hex")
		require.Error(t, err)
	})
	t.Run("short is a prefix", func(t *testing.T) {
		h := Hash{0xab, 0xcd, 0xef}
		require.Len(t, h.Short(), 8)
	})
}

func TestTransaction(t *testing.T) {
	t.Run("milestone kind", func(t *testing.T) {
		tx := &Transaction{MilestoneIndex: 5}
		require.True(t, tx.IsMilestone())
		tx.MilestoneIndex = 0
		require.False(t, tx.IsMilestone())
	})
	t.Run("confirmed iff snapshot index set", func(t *testing.T) {
		tx := &Transaction{}
		require.False(t, tx.Confirmed())
		tx.SnapshotIndex = 10
		require.True(t, tx.Confirmed())
	})
}

func TestContentHash(t *testing.T) {
	t.Run("deterministic for identical fields", func(t *testing.T) {
		a := ContentHash(Hash{1}, Hash{2}, Address{3}, -5, []byte("sig"))
		b := ContentHash(Hash{1}, Hash{2}, Address{3}, -5, []byte("sig"))
		require.Equal(t, a, b)
	})
	t.Run("differs when any field changes", func(t *testing.T) {
		base := ContentHash(Hash{1}, Hash{2}, Address{3}, -5, []byte("sig"))
		require.NotEqual(t, base, ContentHash(Hash{9}, Hash{2}, Address{3}, -5, []byte("sig")))
		require.NotEqual(t, base, ContentHash(Hash{1}, Hash{2}, Address{3}, 5, []byte("sig")))
		require.NotEqual(t, base, ContentHash(Hash{1}, Hash{2}, Address{3}, -5, []byte("other")))
	})
	t.Run("Seal assigns and returns the same hash", func(t *testing.T) {
		tx := &Transaction{Trunk: Hash{1}, Branch: Hash{2}, Addr: Address{3}, Value: -5}
		got := tx.Seal()
		require.Equal(t, got, tx.Hash)
		require.Equal(t, ContentHash(Hash{1}, Hash{2}, Address{3}, -5, nil), tx.Hash)
	})
}

func TestErrors(t *testing.T) {
	t.Run("not found mentions hash", func(t *testing.T) {
		err := &ErrNotFound{Hash: Hash{9}}
		require.Contains(t, err.Error(), Hash{9}.Short())
	})
	t.Run("integrity mentions reason", func(t *testing.T) {
		err := &ErrIntegrity{Reason: "cycle"}
		require.Contains(t, err.Error(), "cycle")
	})
}
