package session

import (
	"context"
	"errors"
	"sync"

	"github.com/airbitz/abcd/internal/core/application/account"
	"github.com/airbitz/abcd/internal/core/application/login"
	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrMissingDatadir ...
	ErrMissingDatadir = errors.New("missing datadir")
	// ErrMissingIdentity ...
	ErrMissingIdentity = errors.New("missing identity service")
	// ErrMissingRepoDirectory ...
	ErrMissingRepoDirectory = errors.New("missing repo directory service")
	// ErrMissingRepoSync ...
	ErrMissingRepoSync = errors.New("missing repo sync service")
	// ErrMissingWalletsLoader ...
	ErrMissingWalletsLoader = errors.New("missing wallets loader")
)

// Service holds the signed in account of the application, if any. Signing in
// again replaces the current session.
type Service struct {
	datadir     string
	accountType string
	identity    ports.Identity
	repos       ports.RepoDirectory
	syncer      ports.RepoSync
	loader      ports.WalletsLoader

	lock    sync.RWMutex
	login   *login.Login
	account *account.Account

	// syncLock serializes the syncs of the current account and is held by
	// whoever replaces or drops the session, so that no sync runs with wiped
	// keys. It is always acquired before lock.
	syncLock sync.Mutex
}

func NewService(
	datadir, accountType string,
	identity ports.Identity, repos ports.RepoDirectory,
	syncer ports.RepoSync, loader ports.WalletsLoader,
) (*Service, error) {
	if datadir == "" {
		return nil, ErrMissingDatadir
	}
	if identity == nil {
		return nil, ErrMissingIdentity
	}
	if repos == nil {
		return nil, ErrMissingRepoDirectory
	}
	if syncer == nil {
		return nil, ErrMissingRepoSync
	}
	if loader == nil {
		return nil, ErrMissingWalletsLoader
	}
	if accountType == "" {
		accountType = domain.AccountRepoType
	}

	return &Service{
		datadir:     datadir,
		accountType: accountType,
		identity:    identity,
		repos:       repos,
		syncer:      syncer,
		loader:      loader,
	}, nil
}

// CreateAccount registers a new login on this device, provisions its account
// repository and signs into it.
func (s *Service) CreateAccount(
	ctx context.Context, username, password string,
) error {
	lobby, err := domain.NewLobby(s.datadir, username)
	if err != nil {
		return err
	}

	l, err := login.Register(ctx, s.identity, s.repos, *lobby, password)
	if err != nil {
		return err
	}
	if err := s.open(ctx, l); err != nil {
		return err
	}

	log.Infof("created account %s", lobby.Username)
	return nil
}

// SignIn authenticates an existing login and loads its account.
func (s *Service) SignIn(ctx context.Context, username, password string) error {
	lobby, err := domain.NewLobby(s.datadir, username)
	if err != nil {
		return err
	}

	l, err := login.Create(ctx, s.identity, s.repos, *lobby, password)
	if err != nil {
		return err
	}
	if err := s.open(ctx, l); err != nil {
		return err
	}

	log.Infof("signed in as %s", lobby.Username)
	return nil
}

// SignOut drops the current session, wiping its keys from memory.
func (s *Service) SignOut(_ context.Context) error {
	s.syncLock.Lock()
	defer s.syncLock.Unlock()

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.login == nil {
		return nil
	}

	log.Infof("signed out from %s", s.login.Lobby().Username)
	s.login.Close()
	s.login = nil
	s.account = nil
	return nil
}

// Sync pulls the account repository and reports whether its content
// changed.
func (s *Service) Sync(ctx context.Context) (bool, error) {
	s.syncLock.Lock()
	defer s.syncLock.Unlock()

	acct, err := s.currentAccount()
	if err != nil {
		return false, err
	}
	return acct.Sync(ctx)
}

func (s *Service) ListWallets(ctx context.Context) ([]domain.WalletEntry, error) {
	acct, err := s.currentAccount()
	if err != nil {
		return nil, err
	}
	return acct.Wallets().Entries(), nil
}

// Username returns the normalized name of the signed in user.
func (s *Service) Username() (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.login == nil {
		return "", domain.ErrLoggedOut
	}
	return s.login.Lobby().Username, nil
}

// DataKey returns the account data key, for decrypting the files of the
// working copy.
func (s *Service) DataKey() (domain.SecretKey, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.login == nil {
		return nil, domain.ErrLoggedOut
	}
	return s.login.DataKey().Clone(), nil
}

// AccountDir returns the working copy of the account repository.
func (s *Service) AccountDir() (string, error) {
	acct, err := s.currentAccount()
	if err != nil {
		return "", err
	}
	return acct.Dir(), nil
}

func (s *Service) IsLoggedIn() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.account != nil
}

func (s *Service) open(ctx context.Context, l *login.Login) error {
	acct, err := account.Create(ctx, l, s.syncer, s.loader, s.accountType)
	if err != nil {
		l.Close()
		return err
	}

	s.syncLock.Lock()
	defer s.syncLock.Unlock()

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.login != nil {
		s.login.Close()
	}
	s.login = l
	s.account = acct
	return nil
}

func (s *Service) currentAccount() (*account.Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.account == nil {
		return nil, domain.ErrLoggedOut
	}
	return s.account, nil
}
