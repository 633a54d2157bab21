package boltidentity_test

import (
	"context"
	"io"
	"testing"

	"github.com/airbitz/abcd/internal/core/domain"
	boltidentity "github.com/airbitz/abcd/internal/infrastructure/identity/bolt"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	ctx := context.Background()
	datadir := t.TempDir()

	identity, err := boltidentity.NewIdentity(datadir)
	require.NoError(t, err)

	lobby, err := domain.NewLobby(datadir, "Alice")
	require.NoError(t, err)

	_, err = identity.Authenticate(ctx, *lobby, "password")
	require.ErrorIs(t, err, domain.ErrAuthentication)
	require.ErrorIs(t, err, boltidentity.ErrLoginNotFound)

	masterKey, err := identity.Register(ctx, *lobby, "password")
	require.NoError(t, err)
	require.Len(t, masterKey, domain.MasterKeySize)

	_, err = identity.Register(ctx, *lobby, "other")
	require.ErrorIs(t, err, domain.ErrAccountExists)

	key, err := identity.Authenticate(ctx, *lobby, "password")
	require.NoError(t, err)
	require.Equal(t, []byte(masterKey), []byte(key))

	_, err = identity.Authenticate(ctx, *lobby, "wrong")
	require.ErrorIs(t, err, domain.ErrAuthentication)

	other, err := domain.NewLobby(datadir, "bob")
	require.NoError(t, err)
	otherKey, err := identity.Register(ctx, *other, "password")
	require.NoError(t, err)
	require.NotEqual(t, []byte(masterKey), []byte(otherKey))

	// The master key survives reopening the db.
	require.NoError(t, identity.(io.Closer).Close())
	identity, err = boltidentity.NewIdentity(datadir)
	require.NoError(t, err)
	defer identity.(io.Closer).Close()

	key, err = identity.Authenticate(ctx, *lobby, "password")
	require.NoError(t, err)
	require.Equal(t, []byte(masterKey), []byte(key))
}
