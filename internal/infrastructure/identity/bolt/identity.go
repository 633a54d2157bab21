package boltidentity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	"github.com/btcsuite/btcwallet/snacl"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	// DBFile is the name of the identity db file in the data directory.
	DBFile = "identity.db"

	dbTimeout = 2 * time.Second
)

var (
	loginsBucketName = []byte("logins")

	// encryptionKeyID stores the password-derived key parameters, masterKeyID
	// the master key encrypted with it.
	encryptionKeyID = []byte("enckey")
	masterKeyID     = []byte("masterkey")

	// Below are the scrypt parameters used to stretch the login password.
	scryptN = snacl.DefaultN
	scryptR = snacl.DefaultR
	scryptP = snacl.DefaultP

	ErrLoginNotFound = errors.New("login not found on this device")
	ErrCorruptedDB   = errors.New("identity db is corrupted")
)

type identity struct {
	db *bolt.DB
}

// NewIdentity returns an Identity keeping, for every login of this device,
// the account master key encrypted with a key stretched from the password.
func NewIdentity(datadir string) (ports.Identity, error) {
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, err
	}

	db, err := bolt.Open(
		filepath.Join(datadir, DBFile), 0600, &bolt.Options{Timeout: dbTimeout},
	)
	if err != nil {
		return nil, fmt.Errorf("opening identity db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(loginsBucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &identity{db}, nil
}

// Register creates a new random master key for the lobby and stores it
// encrypted with the password.
func (i *identity) Register(
	ctx context.Context, lobby domain.Lobby, password string,
) (domain.SecretKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw := []byte(password)
	encKey, err := snacl.NewSecretKey(&pw, scryptN, scryptR, scryptP)
	if err != nil {
		return nil, err
	}
	defer encKey.Zero()

	masterKey := make(domain.SecretKey, domain.MasterKeySize)
	if _, err := rand.Read(masterKey); err != nil {
		return nil, err
	}
	encryptedKey, err := encKey.Encrypt(masterKey)
	if err != nil {
		return nil, err
	}

	if err := i.db.Update(func(tx *bolt.Tx) error {
		logins := tx.Bucket(loginsBucketName)
		if logins == nil {
			return ErrCorruptedDB
		}
		if logins.Bucket([]byte(lobby.ID)) != nil {
			return domain.ErrAccountExists
		}

		bucket, err := logins.CreateBucket([]byte(lobby.ID))
		if err != nil {
			return err
		}
		if err := bucket.Put(encryptionKeyID, encKey.Marshal()); err != nil {
			return err
		}
		return bucket.Put(masterKeyID, encryptedKey)
	}); err != nil {
		return nil, err
	}

	log.Debugf("registered login %s", lobby.Username)
	return masterKey, nil
}

// Authenticate decrypts the master key of the lobby with the password.
func (i *identity) Authenticate(
	ctx context.Context, lobby domain.Lobby, password string,
) (domain.SecretKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var encKeyBuf, encryptedKey []byte
	if err := i.db.View(func(tx *bolt.Tx) error {
		logins := tx.Bucket(loginsBucketName)
		if logins == nil {
			return ErrCorruptedDB
		}
		bucket := logins.Bucket([]byte(lobby.ID))
		if bucket == nil {
			return ErrLoginNotFound
		}

		encKeyBuf = copyBytes(bucket.Get(encryptionKeyID))
		encryptedKey = copyBytes(bucket.Get(masterKeyID))
		if len(encKeyBuf) <= 0 || len(encryptedKey) <= 0 {
			return ErrCorruptedDB
		}
		return nil
	}); err != nil {
		if errors.Is(err, ErrLoginNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
		}
		return nil, err
	}

	encKey := &snacl.SecretKey{}
	if err := encKey.Unmarshal(encKeyBuf); err != nil {
		return nil, err
	}
	pw := []byte(password)
	if err := encKey.DeriveKey(&pw); err != nil {
		if errors.Is(err, snacl.ErrInvalidPassword) {
			return nil, fmt.Errorf("%w: invalid password", domain.ErrAuthentication)
		}
		return nil, err
	}
	defer encKey.Zero()

	masterKey, err := encKey.Decrypt(encryptedKey)
	if err != nil {
		return nil, err
	}
	return domain.SecretKey(masterKey), nil
}

// Close closes the underlying db.
func (i *identity) Close() error {
	return i.db.Close()
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
