package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"keybackup/internal/util/memzero"
)

// ErrEntropy is returned when the system random source cannot fill a buffer.
var ErrEntropy = errors.New("not enough randomness available")

// Reader is the random source. Tests may swap it to simulate failures.
var Reader io.Reader = rand.Reader

// RandomBytes fills b from Reader. On failure b is wiped so a partially
// filled buffer is never mistaken for key material.
func RandomBytes(b []byte) error {
	if _, err := io.ReadFull(Reader, b); err != nil {
		memzero.Zero(b)
		return fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return nil
}

// Wipe zeroes b.
func Wipe(b []byte) { memzero.Zero(b) }
