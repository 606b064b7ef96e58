package recoverykey

import (
	"errors"

	"keybackup/internal/crypto"
)

var (
	// ErrEncoding is returned for malformed base64 or base58 input.
	ErrEncoding = errors.New("invalid recovery key encoding")
	// ErrChecksum is returned when a checksummed key fails its parity check.
	ErrChecksum = errors.New("recovery key checksum mismatch")
	// ErrEntropy is returned when not enough randomness is available to
	// create a key or salt. No key is produced in that case.
	ErrEntropy = crypto.ErrEntropy
	// ErrDecryption is returned when a backup record does not authenticate
	// or decode under this key. It signals a wrong key or tampering.
	ErrDecryption = errors.New("backup record decryption failed")
	// ErrInvalidIterations is returned for a non-positive PBKDF2 round count.
	ErrInvalidIterations = errors.New("pbkdf2 iterations must be positive")
)
