package account_test

import (
	"context"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockLogin struct {
	mock.Mock
	syncDir string
	tmpDir  string
}

func (m *mockLogin) RepoFind(
	ctx context.Context, purpose string, create bool,
) (domain.RepoInfo, error) {
	args := m.Called(ctx, purpose, create)

	var res domain.RepoInfo
	if a := args.Get(0); a != nil {
		res = a.(domain.RepoInfo)
	}
	return res, args.Error(1)
}

func (m *mockLogin) SyncDir() string {
	return m.syncDir
}

func (m *mockLogin) TmpDir() string {
	return m.tmpDir
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
