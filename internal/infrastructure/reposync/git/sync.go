package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbitz/abcd/internal/core/ports"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/config"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/transport"
)

const remoteName = "origin"

var (
	ErrMissingServers = errors.New("missing sync server list")
	ErrNoSyncServer   = errors.New("no sync server available")
)

// ServerList provides the sync servers to try, in order.
type ServerList interface {
	SyncServers(ctx context.Context) []string
}

type repoSync struct {
	servers ServerList
}

// NewRepoSync returns a RepoSync on top of go-git. The remote of a repository
// is <server>/<syncKey>, for every server of the list until one succeeds.
func NewRepoSync(servers ServerList) (ports.RepoSync, error) {
	if servers == nil {
		return nil, ErrMissingServers
	}
	return &repoSync{servers}, nil
}

// Ensure clones the repository into a staging directory under tmpDir and
// renames it into dir once complete, so that an interrupted clone never
// leaves a half-made working copy behind. A remote with no commits yet is
// initialized locally with the remote configured.
func (r *repoSync) Ensure(ctx context.Context, dir, tmpDir, syncKey string) error {
	if _, err := git.PlainOpen(dir); err == nil {
		return nil
	} else if !errors.Is(err, git.ErrRepositoryNotExists) {
		log.WithError(err).Warnf("discarding unreadable working copy %s", dir)
	}

	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return err
	}
	staging := filepath.Join(tmpDir, uuid.New().String())
	defer os.RemoveAll(staging)

	if err := r.withServers(ctx, syncKey, func(url string) error {
		return clone(ctx, staging, url)
	}); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0700); err != nil {
		return err
	}
	if err := os.Rename(staging, dir); err != nil {
		return err
	}

	log.Debugf("working copy of repo %s ready", shortKey(syncKey))
	return nil
}

// Pull merges the remote changes into the working copy of dir. It reports
// whether HEAD moved.
func (r *repoSync) Pull(ctx context.Context, dir, syncKey string) (bool, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return false, err
	}

	before, err := headHash(repo)
	if err != nil {
		return false, err
	}

	if err := r.withServers(ctx, syncKey, func(url string) error {
		return pull(ctx, repo, url)
	}); err != nil {
		return false, err
	}

	after, err := headHash(repo)
	if err != nil {
		return false, err
	}

	dirty := before != after
	log.Debugf("pulled repo %s, dirty: %t", shortKey(syncKey), dirty)
	return dirty, nil
}

func (r *repoSync) withServers(
	ctx context.Context, syncKey string, fn func(url string) error,
) error {
	servers := r.servers.SyncServers(ctx)
	if len(servers) == 0 {
		return ErrNoSyncServer
	}

	var err error
	for _, server := range servers {
		url := strings.TrimSuffix(server, "/") + "/" + syncKey
		if err = fn(url); err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.WithError(err).Debugf("sync server %s failed", server)
	}
	return err
}

func clone(ctx context.Context, dir, url string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}

	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:        url,
		RemoteName: remoteName,
	})
	if err == nil {
		return nil
	}
	if !isEmptyRemote(err) {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return err
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: remoteName,
		URLs: []string{url},
	})
	return err
}

func pull(ctx context.Context, repo *git.Repository, url string) error {
	if err := setRemote(repo, url); err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: remoteName})
	if errors.Is(err, git.NoErrAlreadyUpToDate) || isEmptyRemote(err) {
		return nil
	}
	return err
}

// isEmptyRemote tells whether err means the remote has no commit yet.
func isEmptyRemote(err error) bool {
	return errors.Is(err, transport.ErrEmptyRemoteRepository) ||
		errors.Is(err, plumbing.ErrReferenceNotFound)
}

func setRemote(repo *git.Repository, url string) error {
	remote, err := repo.Remote(remoteName)
	if err == nil {
		urls := remote.Config().URLs
		if len(urls) == 1 && urls[0] == url {
			return nil
		}
		if err := repo.DeleteRemote(remoteName); err != nil {
			return err
		}
	} else if !errors.Is(err, git.ErrRemoteNotFound) {
		return err
	}

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: remoteName,
		URLs: []string{url},
	})
	return err
}

func headHash(repo *git.Repository) (plumbing.Hash, error) {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, nil
		}
		return plumbing.ZeroHash, fmt.Errorf("failed to read HEAD: %w", err)
	}
	return head.Hash(), nil
}

func shortKey(syncKey string) string {
	if len(syncKey) > 8 {
		return syncKey[:8]
	}
	return syncKey
}
