package ledgerdiff

import (
	"testing"

	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/ledger"
	"github.com/lunfardo314/tipselect/store"
	"github.com/stretchr/testify/require"
)

func TestUpdateDiff(t *testing.T) {
	t.Run("accepts a fold that stays non-negative", func(t *testing.T) {
		s := store.NewMemory()
		addr := ledger.Address{1}
		s.SetBalance(addr, 40)
		s.Add(&ledger.Transaction{Hash: ledger.Hash{1}, Addr: addr, Value: -10})

		d := New(dag.NewView(s))
		state := NewState()
		ok, err := d.UpdateDiff(state, ledger.Hash{1})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(-10), state.Diff[addr])
		require.True(t, state.Visited.Contains(ledger.Hash{1}))
	})

	t.Run("rejects a fold that would go negative, leaving state untouched", func(t *testing.T) {
		s := store.NewMemory()
		addr := ledger.Address{1}
		s.SetBalance(addr, 40)
		s.Add(&ledger.Transaction{Hash: ledger.Hash{1}, Addr: addr, Value: -50})

		d := New(dag.NewView(s))
		state := NewState()
		ok, err := d.UpdateDiff(state, ledger.Hash{1})
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, state.Diff)
		require.False(t, state.Visited.Contains(ledger.Hash{1}))
	})

	t.Run("missing ancestor rejects without mutation", func(t *testing.T) {
		s := store.NewMemory()
		s.Add(&ledger.Transaction{Hash: ledger.Hash{2}, Trunk: ledger.Hash{1}, Branch: ledger.Hash{1}})

		d := New(dag.NewView(s))
		state := NewState()
		ok, err := d.UpdateDiff(state, ledger.Hash{2})
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, state.Diff)
	})

	t.Run("already-visited hash is a no-op success", func(t *testing.T) {
		s := store.NewMemory()
		s.Add(&ledger.Transaction{Hash: ledger.Hash{1}})
		d := New(dag.NewView(s))
		state := NewState()
		state.Visited.Insert(ledger.Hash{1})

		ok, err := d.UpdateDiff(state, ledger.Hash{1})
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("folds trunk and branch closure together, atomically", func(t *testing.T) {
		s := store.NewMemory()
		addr := ledger.Address{1}
		s.SetBalance(addr, 10)
		s.Add(&ledger.Transaction{Hash: ledger.Hash{1}, Addr: addr, Value: -5})
		s.Add(&ledger.Transaction{Hash: ledger.Hash{2}, Addr: addr, Value: -5})
		s.Add(&ledger.Transaction{Hash: ledger.Hash{3}, Trunk: ledger.Hash{1}, Branch: ledger.Hash{2}, Addr: addr, Value: 0})

		d := New(dag.NewView(s))
		state := NewState()
		ok, err := d.UpdateDiff(state, ledger.Hash{3})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(-10), state.Diff[addr])
	})

	t.Run("clone is independent of the original", func(t *testing.T) {
		s := store.NewMemory()
		s.Add(&ledger.Transaction{Hash: ledger.Hash{1}})
		d := New(dag.NewView(s))
		state := NewState()
		_, err := d.UpdateDiff(state, ledger.Hash{1})
		require.NoError(t, err)

		clone := state.Clone()
		clone.Diff[ledger.Address{9}] = 123
		require.NotContains(t, state.Diff, ledger.Address{9})
	})
}
