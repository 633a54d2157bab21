package domain

import "errors"

var (
	// ErrAuthentication is returned when the identity or the password proof
	// is invalid, or the identity service could not be reached.
	ErrAuthentication = errors.New("authentication failed")
	// ErrRepositoryNotFound is returned when a purpose-scoped repository does
	// not exist and its creation was not requested.
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrSync is returned when the local working copy could not be
	// reconciled with the remote repository.
	ErrSync = errors.New("repository sync failed")
	// ErrLoad is returned when the wallets could not be loaded from an
	// otherwise valid working copy.
	ErrLoad = errors.New("failed to load account data")
	// ErrFetch is returned when the remote configuration is unreachable.
	ErrFetch = errors.New("failed to fetch remote configuration")
	// ErrCacheNotFound is returned by cache stores for artifacts that have
	// never been persisted.
	ErrCacheNotFound = errors.New("cache entry not found")
	// ErrInvalidBlockTarget ...
	ErrInvalidBlockTarget = errors.New("block target must be in range [1, 5]")
	// ErrInvalidFee ...
	ErrInvalidFee = errors.New("fee must be a non negative number")
	// ErrInvalidUsername ...
	ErrInvalidUsername = errors.New("username must not be empty")
	// ErrAccountExists is returned when registering an already known username.
	ErrAccountExists = errors.New("account already exists")
	// ErrLoggedOut is returned by session operations that need a signed-in
	// account.
	ErrLoggedOut = errors.New("no account is logged in")
	// ErrSecretSerialization is returned when trying to serialize key material.
	ErrSecretSerialization = errors.New("secret keys must not be serialized")
)
