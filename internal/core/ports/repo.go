package ports

import (
	"context"

	"github.com/airbitz/abcd/internal/core/domain"
)

// RepoSync is the version-controlled transport of encrypted repositories.
type RepoSync interface {
	// Ensure makes sure dir holds a working copy of the repository, cloning it
	// through a staging directory under tmpDir if needed. It is idempotent and
	// safe to retry after a failure.
	Ensure(ctx context.Context, dir, tmpDir, syncKey string) error
	// Pull brings remote changes into the working copy and reports whether
	// its content changed.
	Pull(ctx context.Context, dir, syncKey string) (dirty bool, err error)
}

// WalletsLoader reads the wallet list out of an account working copy.
type WalletsLoader interface {
	Load(
		ctx context.Context, dir string, dataKey domain.SecretKey,
	) (*domain.Wallets, error)
}
