package recoverykey

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"keybackup/internal/crypto"
	"keybackup/internal/util/memzero"
)

// KeySize is the length of a recovery key secret in bytes.
const KeySize = 32

const base58GroupSize = 4

var checksumPrefix = [2]byte{0x8B, 0x01}

// SecretKey is the raw recovery key secret.
type SecretKey [KeySize]byte

// Wipe zeroes the key.
func (k *SecretKey) Wipe() { memzero.Zero32((*[KeySize]byte)(k)) }

// String never prints the key material.
func (k SecretKey) String() string { return "SecretKey([REDACTED])" }

// Form selects a textual encoding.
type Form int

const (
	// Compact is unpadded base64 without a checksum.
	Compact Form = iota
	// Checksummed is grouped base58 with a prefix and parity byte.
	Checksummed
)

func (f Form) String() string {
	switch f {
	case Compact:
		return "base64"
	case Checksummed:
		return "base58"
	default:
		return fmt.Sprintf("Form(%d)", int(f))
	}
}

// ParseForm accepts "base64"/"compact" and "base58"/"checksummed".
func ParseForm(s string) (Form, error) {
	switch strings.ToLower(s) {
	case "base64", "compact":
		return Compact, nil
	case "base58", "checksummed":
		return Checksummed, nil
	default:
		return 0, fmt.Errorf("unknown recovery key form %q", s)
	}
}

// Encode renders secret in the given form.
func Encode(secret *SecretKey, form Form) string {
	switch form {
	case Checksummed:
		return encodeBase58(secret)
	default:
		return crypto.EncodeBase64(secret[:])
	}
}

// Decode parses s in the given form.
func Decode(s string, form Form) (SecretKey, error) {
	switch form {
	case Compact:
		return decodeBase64(s)
	case Checksummed:
		return decodeBase58(s)
	default:
		return SecretKey{}, fmt.Errorf("%w: unknown form %v", ErrEncoding, form)
	}
}

func decodeBase64(s string) (SecretKey, error) {
	var key SecretKey
	raw, err := crypto.DecodeBase64(strings.TrimSpace(s))
	if err != nil {
		return key, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	defer memzero.Zero(raw)
	if len(raw) != KeySize {
		return key, fmt.Errorf("%w: want %d bytes, got %d", ErrEncoding, KeySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

func encodeBase58(secret *SecretKey) string {
	buf := make([]byte, 0, len(checksumPrefix)+KeySize+1)
	buf = append(buf, checksumPrefix[:]...)
	buf = append(buf, secret[:]...)
	buf = append(buf, parity(buf))
	defer memzero.Zero(buf)

	enc := base58.Encode(buf)
	var sb strings.Builder
	for i := 0; i < len(enc); i += base58GroupSize {
		if i > 0 {
			sb.WriteByte(' ')
		}
		end := min(i+base58GroupSize, len(enc))
		sb.WriteString(enc[i:end])
	}
	return sb.String()
}

func decodeBase58(s string) (SecretKey, error) {
	var key SecretKey
	compact := strings.Join(strings.Fields(s), "")
	if compact == "" {
		return key, fmt.Errorf("%w: empty key", ErrEncoding)
	}
	raw, err := base58.Decode(compact)
	if err != nil {
		return key, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	defer memzero.Zero(raw)

	if len(raw) != len(checksumPrefix)+KeySize+1 {
		return key, fmt.Errorf("%w: want %d bytes, got %d", ErrEncoding, len(checksumPrefix)+KeySize+1, len(raw))
	}
	if raw[0] != checksumPrefix[0] || raw[1] != checksumPrefix[1] {
		return key, fmt.Errorf("%w: bad prefix", ErrEncoding)
	}
	if parity(raw[:len(raw)-1]) != raw[len(raw)-1] {
		return key, ErrChecksum
	}
	copy(key[:], raw[len(checksumPrefix):len(checksumPrefix)+KeySize])
	return key, nil
}

func parity(b []byte) byte {
	var p byte
	for _, c := range b {
		p ^= c
	}
	return p
}
