package account

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	"github.com/airbitz/abcd/pkg/stats"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrMissingLogin ...
	ErrMissingLogin = errors.New("missing login")
	// ErrMissingRepoSync ...
	ErrMissingRepoSync = errors.New("missing repo sync service")
	// ErrMissingWalletsLoader ...
	ErrMissingWalletsLoader = errors.New("missing wallets loader")
)

// Login is what an Account needs from the logged-in session: repository
// discovery and the location of its local storage.
type Login interface {
	RepoFind(ctx context.Context, purpose string, create bool) (domain.RepoInfo, error)
	SyncDir() string
	TmpDir() string
}

// Account is the account-level repository of a login together with the
// wallet list loaded from it.
type Account struct {
	login  Login
	syncer ports.RepoSync
	loader ports.WalletsLoader

	dir    string
	tmpDir string
	repo   domain.RepoInfo

	walletsMtx sync.RWMutex
	wallets    *domain.Wallets
}

// Create finds (or provisions) the repository of the given purpose, makes
// sure its working copy exists and loads the wallets out of it. No Account is
// returned unless all of that succeeded.
func Create(
	ctx context.Context,
	login Login, syncer ports.RepoSync, loader ports.WalletsLoader,
	purpose string,
) (*Account, error) {
	if login == nil {
		return nil, ErrMissingLogin
	}
	if syncer == nil {
		return nil, ErrMissingRepoSync
	}
	if loader == nil {
		return nil, ErrMissingWalletsLoader
	}
	if purpose == "" {
		purpose = domain.AccountRepoType
	}

	repo, err := login.RepoFind(ctx, purpose, true)
	if err != nil {
		return nil, err
	}

	a := &Account{
		login:  login,
		syncer: syncer,
		loader: loader,
		dir:    login.SyncDir(),
		tmpDir: login.TmpDir(),
		repo:   repo,
	}
	if err := a.Load(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

// Load makes sure the local working copy exists, materializing it from the
// remote repository if needed, then reloads the wallets from it. On failure
// the previously loaded wallets are left untouched.
func (a *Account) Load(ctx context.Context) error {
	if err := a.syncer.Ensure(
		ctx, a.dir, a.tmpDir, a.repo.SyncKey,
	); err != nil {
		return syncError(err)
	}

	return a.reloadWallets(ctx)
}

// Sync pulls remote changes into the working copy and reports whether its
// content changed. When it did, the wallets are reloaded before returning so
// that no caller can observe a dirty result with stale wallets.
func (a *Account) Sync(ctx context.Context) (bool, error) {
	dirty, err := a.syncer.Pull(ctx, a.dir, a.repo.SyncKey)
	if err != nil {
		stats.SyncFailures.Inc()
		log.WithError(err).Warn("account sync failed")
		return false, syncError(err)
	}
	stats.SyncAttempts.Inc()

	if !dirty {
		return false, nil
	}
	stats.SyncDirty.Inc()

	if err := a.reloadWallets(ctx); err != nil {
		return true, err
	}
	log.Debug("account changed, wallets reloaded")

	return true, nil
}

// Wallets returns the snapshot of the wallet list matching the working copy
// as of the last successful Create, Load or Sync.
func (a *Account) Wallets() *domain.Wallets {
	a.walletsMtx.RLock()
	defer a.walletsMtx.RUnlock()

	return a.wallets
}

// Dir is the location of the local working copy.
func (a *Account) Dir() string {
	return a.dir
}

func (a *Account) RepoInfo() domain.RepoInfo {
	return a.repo
}

func (a *Account) reloadWallets(ctx context.Context) error {
	wallets, err := a.loader.Load(ctx, a.dir, a.repo.DataKey)
	if err != nil {
		if errors.Is(err, domain.ErrLoad) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}

	a.walletsMtx.Lock()
	a.wallets = wallets
	a.walletsMtx.Unlock()

	return nil
}

func syncError(err error) error {
	if errors.Is(err, domain.ErrSync) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrSync, err)
}
