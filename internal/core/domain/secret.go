package domain

import (
	"fmt"
)

// MasterKeySize is the length in bytes of a session master key.
const MasterKeySize = 32

const redacted = "[redacted]"

// SecretKey holds key material. It refuses to be printed or serialized so
// that it can never end up in a log line or on disk by accident.
type SecretKey []byte

func (k SecretKey) String() string {
	return redacted
}

func (k SecretKey) GoString() string {
	return redacted
}

// Format makes every fmt verb, including %x and %v, print the redacted
// placeholder.
func (k SecretKey) Format(f fmt.State, _ rune) {
	f.Write([]byte(redacted))
}

func (k SecretKey) MarshalJSON() ([]byte, error) {
	return nil, ErrSecretSerialization
}

func (k SecretKey) MarshalText() ([]byte, error) {
	return nil, ErrSecretSerialization
}

// Zero wipes the key material in place.
func (k SecretKey) Zero() {
	clear(k)
}

// Clone returns a copy of the key the caller becomes responsible for.
func (k SecretKey) Clone() SecretKey {
	if k == nil {
		return nil
	}
	return append(SecretKey{}, k...)
}
