package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const accountsDirname = "Accounts"

// Lobby is the server-independent handle of a username. It is shared by all
// the logins of the same user and owns no key material.
type Lobby struct {
	Username string
	ID       string
	Dir      string
}

// NewLobby normalizes the given username and returns its lobby rooted in
// datadir.
func NewLobby(datadir, username string) (*Lobby, error) {
	fixed := FixUsername(username)
	if fixed == "" {
		return nil, ErrInvalidUsername
	}

	hash := sha256.Sum256([]byte(fixed))
	id := hex.EncodeToString(hash[:])

	return &Lobby{
		Username: fixed,
		ID:       id,
		Dir:      filepath.Join(datadir, accountsDirname, id),
	}, nil
}

// FixUsername trims the username, lower-cases it and collapses any run of
// internal whitespace into a single space.
func FixUsername(username string) string {
	return strings.ToLower(strings.Join(strings.Fields(username), " "))
}
