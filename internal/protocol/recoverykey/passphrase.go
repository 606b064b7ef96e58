package recoverykey

import (
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"keybackup/internal/crypto"
	"keybackup/internal/util/memzero"
)

const (
	// DefaultIterations is the PBKDF2 round count for new passphrase keys.
	DefaultIterations = 500_000
	// SaltLength is the number of characters in a generated salt.
	SaltLength = 32

	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Largest multiple of len(saltAlphabet) that fits in a byte; bytes at or
	// above it are rejected so every character is equally likely.
	saltRejectAbove = 256 - 256%len(saltAlphabet)
)

// DeriveKey runs PBKDF2-HMAC-SHA-512 over passphrase and salt. The same inputs
// always yield the same key.
func DeriveKey(passphrase, salt string, iterations int) (SecretKey, error) {
	var key SecretKey
	if iterations <= 0 {
		return key, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}

	pass := []byte(passphrase)
	defer memzero.Zero(pass)

	derived := pbkdf2.Key(pass, []byte(salt), iterations, KeySize, sha512.New)
	defer memzero.Zero(derived)

	copy(key[:], derived)
	return key, nil
}

// GenerateSalt returns SaltLength random alphanumeric characters.
func GenerateSalt() (string, error) {
	out := make([]byte, 0, SaltLength)
	buf := make([]byte, 2*SaltLength)
	for len(out) < SaltLength {
		if err := crypto.RandomBytes(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= saltRejectAbove {
				continue
			}
			out = append(out, saltAlphabet[int(b)%len(saltAlphabet)])
			if len(out) == SaltLength {
				break
			}
		}
	}
	return string(out), nil
}
