package wallets_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/infrastructure/wallets"
	"github.com/stretchr/testify/require"
)

var (
	ctx     = context.Background()
	dataKey = domain.SecretKey(bytes.Repeat([]byte{7}, 32))
)

func TestBox(t *testing.T) {
	box, err := wallets.Seal([]byte("hello"), dataKey)
	require.NoError(t, err)

	data, err := box.Open(dataKey)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	otherKey := bytes.Repeat([]byte{8}, 32)
	_, err = box.Open(otherKey)
	require.ErrorIs(t, err, wallets.ErrDecryptionFailed)

	_, err = box.Open([]byte{1, 2, 3})
	require.ErrorIs(t, err, wallets.ErrInvalidKeySize)

	box.Version = 2
	_, err = box.Open(dataKey)
	require.ErrorIs(t, err, wallets.ErrUnknownBoxVersion)
}

func TestLoad(t *testing.T) {
	loader := wallets.NewLoader()

	t.Run("no wallets", func(t *testing.T) {
		w, err := loader.Load(ctx, t.TempDir(), dataKey)
		require.NoError(t, err)
		require.Zero(t, w.Len())
	})

	t.Run("entries", func(t *testing.T) {
		dir := t.TempDir()
		entries := []domain.WalletEntry{
			{ID: "wallet-b", SyncKey: "bb", DataKey: "0b", SortIndex: 1},
			{ID: "wallet-a", SyncKey: "aa", DataKey: "0a", SortIndex: 0},
			{ID: "wallet-c", SyncKey: "cc", DataKey: "0c", SortIndex: 2, Archived: true},
		}
		for _, e := range entries {
			require.NoError(t, wallets.SaveEntry(dir, dataKey, e))
		}
		// Files that are not wallet entries are ignored.
		err := os.WriteFile(
			filepath.Join(dir, wallets.WalletsDir, "README"), []byte("x"), 0600,
		)
		require.NoError(t, err)

		w, err := loader.Load(ctx, dir, dataKey)
		require.NoError(t, err)
		require.Equal(t, []string{"wallet-a", "wallet-b", "wallet-c"}, w.List())
		require.True(t, w.Archived("wallet-c"))
		require.False(t, w.Archived("wallet-a"))
	})

	t.Run("wrong key", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, wallets.SaveEntry(
			dir, dataKey, domain.WalletEntry{ID: "wallet-a"},
		))

		otherKey := domain.SecretKey(bytes.Repeat([]byte{9}, 32))
		_, err := loader.Load(ctx, dir, otherKey)
		require.ErrorIs(t, err, wallets.ErrDecryptionFailed)
	})

	t.Run("file names hide wallet ids", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, wallets.SaveEntry(
			dir, dataKey, domain.WalletEntry{ID: "wallet-a"},
		))

		_, err := os.Stat(filepath.Join(
			dir, wallets.WalletsDir, wallets.EntryName(dataKey, "wallet-a"),
		))
		require.NoError(t, err)
		require.NotContains(t, wallets.EntryName(dataKey, "wallet-a"), "wallet-a")
	})
}
