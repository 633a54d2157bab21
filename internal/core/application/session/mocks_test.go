package session_test

import (
	"context"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) Authenticate(
	ctx context.Context, lobby domain.Lobby, password string,
) (domain.SecretKey, error) {
	args := m.Called(ctx, lobby, password)

	var res domain.SecretKey
	if a := args.Get(0); a != nil {
		res = a.(domain.SecretKey).Clone()
	}
	return res, args.Error(1)
}

func (m *mockIdentity) Register(
	ctx context.Context, lobby domain.Lobby, password string,
) (domain.SecretKey, error) {
	args := m.Called(ctx, lobby, password)

	var res domain.SecretKey
	if a := args.Get(0); a != nil {
		res = a.(domain.SecretKey).Clone()
	}
	return res, args.Error(1)
}

type mockRepoDirectory struct {
	mock.Mock
}

func (m *mockRepoDirectory) RepoLookup(
	ctx context.Context, auth domain.ServerAuth, syncKey string, create bool,
) error {
	args := m.Called(ctx, auth, syncKey, create)
	return args.Error(0)
}

type mockRepoSync struct {
	mock.Mock
}

func (m *mockRepoSync) Ensure(
	ctx context.Context, dir, tmpDir, syncKey string,
) error {
	args := m.Called(ctx, dir, tmpDir, syncKey)
	return args.Error(0)
}

func (m *mockRepoSync) Pull(
	ctx context.Context, dir, syncKey string,
) (bool, error) {
	args := m.Called(ctx, dir, syncKey)
	return args.Bool(0), args.Error(1)
}

type mockWalletsLoader struct {
	mock.Mock
}

func (m *mockWalletsLoader) Load(
	ctx context.Context, dir string, dataKey domain.SecretKey,
) (*domain.Wallets, error) {
	args := m.Called(ctx, dir, dataKey)

	var res *domain.Wallets
	if a := args.Get(0); a != nil {
		res = a.(*domain.Wallets)
	}
	return res, args.Error(1)
}
