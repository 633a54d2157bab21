package domain

import "crypto/subtle"

const (
	// AccountRepoType is the default purpose of the repository holding the
	// account-level data (the list of wallets).
	AccountRepoType = "account:repo:co.airbitz.wallet"
)

// RepoInfo is the keyed descriptor of a purpose-scoped encrypted repository.
// DataKey decrypts the repository content, SyncKey identifies the repository
// on the sync servers.
type RepoInfo struct {
	DataKey SecretKey
	SyncKey string
}

// Equal compares two descriptors. Keys are compared in constant time.
func (r RepoInfo) Equal(other RepoInfo) bool {
	if r.SyncKey != other.SyncKey {
		return false
	}
	return subtle.ConstantTimeCompare(r.DataKey, other.DataKey) == 1
}

// ServerAuth is what the login sends to the server to prove its identity. It
// is derived from the master key but never reveals it.
type ServerAuth struct {
	UserID  string
	AuthKey SecretKey
}
