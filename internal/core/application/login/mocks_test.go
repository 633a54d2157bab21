package login_test

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
