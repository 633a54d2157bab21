package login

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/airbitz/abcd/internal/core/domain"
	"golang.org/x/crypto/hkdf"
)

const (
	// syncKeySize is the length in bytes of a repository id before hex
	// encoding.
	syncKeySize = 20
	authKeySize = 32

	repoIDInfo     = "abcd-repo-id:"
	serverAuthInfo = "abcd-server-auth"
)

// deriveKey expands the master key into a purpose-bound sub key with
// HKDF-SHA256. The output is a pure function of (master, info).
func deriveKey(
	master domain.SecretKey, info string, size int,
) (domain.SecretKey, error) {
	out := make(domain.SecretKey, size)
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncKey returns the repository id of the given purpose. Every device holding
// the same master key derives the same id.
func SyncKey(master domain.SecretKey, purpose string) (string, error) {
	key, err := deriveKey(master, repoIDInfo+purpose, syncKeySize)
	if err != nil {
		return "", err
	}
	defer key.Zero()

	return hex.EncodeToString(key), nil
}

func serverAuthKey(master domain.SecretKey) (domain.SecretKey, error) {
	return deriveKey(master, serverAuthInfo, authKeySize)
}
