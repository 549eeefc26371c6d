package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

func TestAtomically_RollbackOnError(t *testing.T) {
	s := New()
	require.NoError(t, s.Deposit("alice", 100))
	boom := errors.New("boom")

	err := s.Atomically(context.Background(), func(tx engine.Tx) error {
		require.NoError(t, tx.Transfer(context.Background(), "alice", "bob", 60, "alice", "test"))
		require.NoError(t, tx.InsertMarket(context.Background(), &engine.Market{Address: keys.ProgramID("m")}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, _ := s.Account("alice")
	assert.Equal(t, uint64(100), a.Balance)
	_, ok := s.Account("bob")
	assert.False(t, ok)

	err = s.Atomically(context.Background(), func(tx engine.Tx) error {
		_, err := tx.Market(context.Background(), keys.ProgramID("m"))
		return err
	})
	assert.ErrorIs(t, err, engine.ErrMarketNotFound)
}

func TestAtomically_ReadsOwnWrites(t *testing.T) {
	s := New()
	require.NoError(t, s.Deposit("alice", 100))

	err := s.Atomically(context.Background(), func(tx engine.Tx) error {
		ctx := context.Background()
		if err := tx.Transfer(ctx, "alice", "bob", 40, "alice", "test"); err != nil {
			return err
		}
		bal, err := tx.Balance(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, uint64(40), bal)
		return tx.Transfer(ctx, "bob", "carol", 40, "bob", "test")
	})
	require.NoError(t, err)

	c, ok := s.Account("carol")
	require.True(t, ok)
	assert.Equal(t, uint64(40), c.Balance)
}

func TestLedger_SignerAndClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Atomically(ctx, func(tx engine.Tx) error {
		require.NoError(t, tx.OpenAccount(ctx, "vault", "market"))
		assert.ErrorIs(t, tx.OpenAccount(ctx, "vault", "market"), engine.ErrAccountExists)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Deposit("vault", 10))

	err = s.Atomically(ctx, func(tx engine.Tx) error {
		return tx.Transfer(ctx, "vault", "thief", 10, "thief", "steal")
	})
	assert.ErrorIs(t, err, engine.ErrUnauthorized)

	err = s.Atomically(ctx, func(tx engine.Tx) error {
		return tx.CloseAccount(ctx, "vault", "market")
	})
	assert.ErrorIs(t, err, engine.ErrAccountNotEmpty)

	err = s.Atomically(ctx, func(tx engine.Tx) error {
		if err := tx.Transfer(ctx, "vault", "admin", 10, "market", "drain"); err != nil {
			return err
		}
		return tx.CloseAccount(ctx, "vault", "market")
	})
	require.NoError(t, err)
	_, ok := s.Account("vault")
	assert.False(t, ok)
}

func TestAtomically_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.Atomically(ctx, func(engine.Tx) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLedger_AdoptAccount(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Deposit("alice", 5))

	err := s.Atomically(ctx, func(tx engine.Tx) error {
		require.NoError(t, tx.OpenAccount(ctx, "vault", "market"))
		assert.ErrorIs(t, tx.AdoptAccount(ctx, "vault", "other"), engine.ErrAccountExists)

		require.NoError(t, tx.Transfer(ctx, "alice", "loose", 5, "alice", "gift"))
		require.NoError(t, tx.AdoptAccount(ctx, "loose", "market"))
		return tx.AdoptAccount(ctx, "fresh", "market")
	})
	require.NoError(t, err)

	loose, ok := s.Account("loose")
	require.True(t, ok)
	assert.Equal(t, "market", loose.Owner)
	assert.Equal(t, uint64(5), loose.Balance)

	fresh, ok := s.Account("fresh")
	require.True(t, ok)
	assert.Equal(t, "market", fresh.Owner)

	vault, _ := s.Account("vault")
	assert.Equal(t, "market", vault.Owner)
}
