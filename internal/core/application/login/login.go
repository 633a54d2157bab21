package login

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	syncDirname = "sync"
	tmpDirname  = "tmp"
)

var (
	// ErrMissingIdentity ...
	ErrMissingIdentity = errors.New("missing identity service")
	// ErrMissingRepoDirectory ...
	ErrMissingRepoDirectory = errors.New("missing repo directory service")
	// ErrMissingPurpose ...
	ErrMissingPurpose = errors.New("repository purpose must not be empty")
)

// Login holds the keys of a logged-in account. Apart from the set of
// discovered repositories it is immutable once created.
type Login struct {
	lobby domain.Lobby
	repos ports.RepoDirectory

	dataKey domain.SecretKey
	authKey domain.SecretKey

	reposMtx sync.Mutex
	found    map[string]domain.RepoInfo
}

// Create signs into an existing account. It never returns a Login whose
// master key was not authenticated by the identity service.
func Create(
	ctx context.Context,
	identity ports.Identity, repos ports.RepoDirectory,
	lobby domain.Lobby, password string,
) (*Login, error) {
	if err := validate(identity, repos); err != nil {
		return nil, err
	}

	dataKey, err := identity.Authenticate(ctx, lobby, password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	return newLogin(lobby, repos, dataKey)
}

// Register creates a new account for the lobby and signs into it.
func Register(
	ctx context.Context,
	identity ports.Identity, repos ports.RepoDirectory,
	lobby domain.Lobby, password string,
) (*Login, error) {
	if err := validate(identity, repos); err != nil {
		return nil, err
	}

	dataKey, err := identity.Register(ctx, lobby, password)
	if err != nil {
		return nil, fmt.Errorf("failed to register login: %w", err)
	}

	return newLogin(lobby, repos, dataKey)
}

func newLogin(
	lobby domain.Lobby, repos ports.RepoDirectory, dataKey domain.SecretKey,
) (*Login, error) {
	if len(dataKey) != domain.MasterKeySize {
		dataKey.Zero()
		return nil, fmt.Errorf(
			"%w: master key must be %d bytes long",
			domain.ErrAuthentication, domain.MasterKeySize,
		)
	}

	authKey, err := serverAuthKey(dataKey)
	if err != nil {
		dataKey.Zero()
		return nil, err
	}

	log.Debugf("logged in as %s", lobby.Username)

	return &Login{
		lobby:   lobby,
		repos:   repos,
		dataKey: dataKey,
		authKey: authKey,
		found:   make(map[string]domain.RepoInfo),
	}, nil
}

// RepoFind returns the descriptor of the repository for the given purpose,
// provisioning it on the server if create is true. Repeated calls for the
// same purpose return equal descriptors.
func (l *Login) RepoFind(
	ctx context.Context, purpose string, create bool,
) (domain.RepoInfo, error) {
	if purpose == "" {
		return domain.RepoInfo{}, ErrMissingPurpose
	}

	if info, ok := l.getRepo(purpose); ok {
		return info, nil
	}

	syncKey, err := SyncKey(l.dataKey, purpose)
	if err != nil {
		return domain.RepoInfo{}, err
	}

	if err := l.repos.RepoLookup(
		ctx, l.ServerAuth(), syncKey, create,
	); err != nil {
		return domain.RepoInfo{}, fmt.Errorf(
			"failed to find %s repo: %w", purpose, err,
		)
	}

	log.Debugf("found %s repo", purpose)

	return l.addRepo(purpose, domain.RepoInfo{
		DataKey: l.dataKey,
		SyncKey: syncKey,
	}), nil
}

// DataKey returns the master key of the account. The returned slice is a
// borrowed view and must not be retained beyond the Login's lifetime.
func (l *Login) DataKey() domain.SecretKey {
	return l.dataKey
}

// ServerAuth returns the credentials used to authenticate against the server.
func (l *Login) ServerAuth() domain.ServerAuth {
	return domain.ServerAuth{
		UserID:  l.lobby.ID,
		AuthKey: l.authKey,
	}
}

func (l *Login) Lobby() domain.Lobby {
	return l.lobby
}

// Dir is the root of the login's local storage.
func (l *Login) Dir() string {
	return l.lobby.Dir
}

// SyncDir is where the account working copy lives.
func (l *Login) SyncDir() string {
	return filepath.Join(l.lobby.Dir, syncDirname)
}

// TmpDir is where working copies are staged before being moved in place.
func (l *Login) TmpDir() string {
	return filepath.Join(l.lobby.Dir, tmpDirname)
}

// Close wipes the key material. The Login and every descriptor it returned
// must not be used afterwards.
func (l *Login) Close() {
	l.reposMtx.Lock()
	defer l.reposMtx.Unlock()

	l.dataKey.Zero()
	l.authKey.Zero()
	l.found = make(map[string]domain.RepoInfo)
}

func (l *Login) getRepo(purpose string) (domain.RepoInfo, bool) {
	l.reposMtx.Lock()
	defer l.reposMtx.Unlock()

	info, ok := l.found[purpose]
	return info, ok
}

// addRepo keeps the first descriptor stored for a purpose.
func (l *Login) addRepo(purpose string, info domain.RepoInfo) domain.RepoInfo {
	l.reposMtx.Lock()
	defer l.reposMtx.Unlock()

	if existing, ok := l.found[purpose]; ok {
		return existing
	}
	l.found[purpose] = info
	return info
}

func validate(identity ports.Identity, repos ports.RepoDirectory) error {
	if identity == nil {
		return ErrMissingIdentity
	}
	if repos == nil {
		return ErrMissingRepoDirectory
	}
	return nil
}
