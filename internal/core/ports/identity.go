package ports

import (
	"context"

	"github.com/airbitz/abcd/internal/core/domain"
)

// Identity verifies a user's password proof and hands out the session master
// key. Implementations must never return a key that was not authenticated.
type Identity interface {
	// Authenticate returns the master key of an existing login.
	Authenticate(
		ctx context.Context, lobby domain.Lobby, password string,
	) (domain.SecretKey, error)
	// Register creates a new login and returns its freshly generated master
	// key.
	Register(
		ctx context.Context, lobby domain.Lobby, password string,
	) (domain.SecretKey, error)
}

// RepoDirectory is the server-side registry of purpose-scoped repositories.
type RepoDirectory interface {
	// RepoLookup checks that the repository identified by syncKey exists,
	// creating it if requested. It returns domain.ErrRepositoryNotFound if the
	// repository is missing and create is false.
	RepoLookup(
		ctx context.Context, auth domain.ServerAuth, syncKey string, create bool,
	) error
}
