package wallets

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// WalletsDir is the folder of the account working copy holding one encrypted
// entry per wallet.
const WalletsDir = "Wallets"

type loader struct{}

// NewLoader returns a WalletsLoader reading the boxed wallet entries of an
// account working copy.
func NewLoader() ports.WalletsLoader {
	return loader{}
}

// Load decrypts every entry under the Wallets folder of dir. A missing folder
// means the account has no wallets yet.
func (loader) Load(
	ctx context.Context, dir string, dataKey domain.SecretKey,
) (*domain.Wallets, error) {
	walletsDir := filepath.Join(dir, WalletsDir)

	files, err := os.ReadDir(walletsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewWallets(nil), nil
		}
		return nil, err
	}

	entries := make([]domain.WalletEntry, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := readEntry(filepath.Join(walletsDir, f.Name()), dataKey)
		if err != nil {
			return nil, fmt.Errorf("wallet %s: %w", f.Name(), err)
		}
		entries = append(entries, *entry)
	}

	log.Debugf("loaded %d wallets from %s", len(entries), walletsDir)
	return domain.NewWallets(entries), nil
}

// SaveEntry boxes the given entry into the Wallets folder of dir.
func SaveEntry(
	dir string, dataKey domain.SecretKey, entry domain.WalletEntry,
) error {
	walletsDir := filepath.Join(dir, WalletsDir)
	if err := os.MkdirAll(walletsDir, 0700); err != nil {
		return err
	}

	buf, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	box, err := Seal(buf, dataKey)
	if err != nil {
		return err
	}
	buf, err = json.Marshal(box)
	if err != nil {
		return err
	}

	path := filepath.Join(walletsDir, EntryName(dataKey, entry.ID))
	return os.WriteFile(path, buf, 0600)
}

// EntryName returns the file name of a wallet entry. It is keyed by the
// account data key so that the wallet id is not exposed.
func EntryName(dataKey domain.SecretKey, id string) string {
	mac := hmac.New(sha256.New, dataKey)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil)) + ".json"
}

// OpenFile decrypts any boxed file of a working copy.
func OpenFile(path string, dataKey domain.SecretKey) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var box Box
	if err := json.Unmarshal(buf, &box); err != nil {
		return nil, ErrMalformedBoxFormat
	}
	return box.Open(dataKey)
}

func readEntry(path string, dataKey domain.SecretKey) (*domain.WalletEntry, error) {
	buf, err := OpenFile(path, dataKey)
	if err != nil {
		return nil, err
	}

	var entry domain.WalletEntry
	if err := json.Unmarshal(buf, &entry); err != nil {
		return nil, err
	}
	if entry.ID == "" {
		return nil, errors.New("missing wallet id")
	}
	return &entry, nil
}
