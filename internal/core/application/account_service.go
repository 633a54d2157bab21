package application

import (
	"context"

	"github.com/airbitz/abcd/internal/core/application/session"
	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
)

type AccountService interface {
	CreateAccount(ctx context.Context, username, password string) error
	SignIn(ctx context.Context, username, password string) error
	SignOut(ctx context.Context) error
	Sync(ctx context.Context) (bool, error)
	ListWallets(ctx context.Context) ([]domain.WalletEntry, error)
	IsLoggedIn() bool
	Username() (string, error)
	DataKey() (domain.SecretKey, error)
	AccountDir() (string, error)
}

func NewAccountService(
	datadir, accountType string,
	identity ports.Identity, repos ports.RepoDirectory,
	syncer ports.RepoSync, loader ports.WalletsLoader,
) (AccountService, error) {
	svc, err := session.NewService(
		datadir, accountType, identity, repos, syncer, loader,
	)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
