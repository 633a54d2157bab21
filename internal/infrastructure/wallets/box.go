package wallets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	boxVersion = 1
	nonceSize  = 24
	keySize    = 32
)

var (
	ErrInvalidKeySize     = errors.New("data key must be 32 bytes")
	ErrUnknownBoxVersion  = errors.New("unknown encryption type")
	ErrInvalidNonce       = errors.New("invalid nonce")
	ErrDecryptionFailed   = errors.New("failed to decrypt box")
	ErrMalformedBoxFormat = errors.New("malformed box")
)

// Box is the on-disk encrypted envelope of every file in a repository.
type Box struct {
	Version int    `json:"encryptionType"`
	Nonce   string `json:"iv_hex"`
	Data    string `json:"data_base64"`
}

// Seal encrypts data with the given 32 bytes key.
func Seal(data, key []byte) (*Box, error) {
	k, err := toKey(key)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	sealed := secretbox.Seal(nil, data, &nonce, k)

	return &Box{
		Version: boxVersion,
		Nonce:   hex.EncodeToString(nonce[:]),
		Data:    base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// Open decrypts the box with the given 32 bytes key.
func (b *Box) Open(key []byte) ([]byte, error) {
	if b.Version != boxVersion {
		return nil, fmt.Errorf("%w %d", ErrUnknownBoxVersion, b.Version)
	}
	k, err := toKey(key)
	if err != nil {
		return nil, err
	}

	buf, err := hex.DecodeString(b.Nonce)
	if err != nil || len(buf) != nonceSize {
		return nil, ErrInvalidNonce
	}
	var nonce [nonceSize]byte
	copy(nonce[:], buf)

	sealed, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		return nil, ErrMalformedBoxFormat
	}

	data, ok := secretbox.Open(nil, sealed, &nonce, k)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return data, nil
}

func toKey(key []byte) (*[keySize]byte, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKeySize
	}
	var k [keySize]byte
	copy(k[:], key)
	return &k, nil
}
