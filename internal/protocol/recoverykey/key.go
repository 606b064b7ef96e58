package recoverykey

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"

	"keybackup/internal/crypto"
	domaintypes "keybackup/internal/domain/types"
)

// RecoveryKey is the private part of the backup key.
type RecoveryKey struct {
	secret         SecretKey
	passphraseInfo *domaintypes.PassphraseInfo
}

// newKey takes a copy of secret. The copy is wiped on Close or, failing
// that, when the key is garbage collected.
func newKey(secret *SecretKey, info *domaintypes.PassphraseInfo) *RecoveryKey {
	k := &RecoveryKey{secret: *secret, passphraseInfo: info}
	runtime.SetFinalizer(k, (*RecoveryKey).Close)
	return k
}

// NewRandom creates a key from the system random source. It fails with
// ErrEntropy rather than return a weak key.
func NewRandom() (*RecoveryKey, error) {
	var secret SecretKey
	defer secret.Wipe()
	if err := crypto.RandomBytes(secret[:]); err != nil {
		return nil, fmt.Errorf("create recovery key: %w", err)
	}
	return newKey(&secret, nil), nil
}

// FromEncoding restores a key from its textual form.
func FromEncoding(s string, form Form) (*RecoveryKey, error) {
	secret, err := Decode(s, form)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe()
	return newKey(&secret, nil), nil
}

// FromBase64 is FromEncoding(s, Compact).
func FromBase64(s string) (*RecoveryKey, error) { return FromEncoding(s, Compact) }

// FromBase58 is FromEncoding(s, Checksummed).
func FromBase58(s string) (*RecoveryKey, error) { return FromEncoding(s, Checksummed) }

// FromPassphrase derives the key for an existing backup from its passphrase,
// salt and round count.
func FromPassphrase(passphrase, salt string, iterations int) (*RecoveryKey, error) {
	secret, err := DeriveKey(passphrase, salt, iterations)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe()
	return newKey(&secret, &domaintypes.PassphraseInfo{Salt: salt, Iterations: iterations}), nil
}

// NewFromPassphrase derives a key from passphrase with a fresh salt and
// DefaultIterations.
func NewFromPassphrase(passphrase string) (*RecoveryKey, error) {
	return NewFromPassphraseWithIterations(passphrase, DefaultIterations)
}

// NewFromPassphraseWithIterations is NewFromPassphrase with a custom round
// count.
func NewFromPassphraseWithIterations(passphrase string, iterations int) (*RecoveryKey, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("create recovery key: %w", err)
	}
	return FromPassphrase(passphrase, salt, iterations)
}

// PassphraseInfo returns the derivation parameters, if the key came from a
// passphrase.
func (k *RecoveryKey) PassphraseInfo() (domaintypes.PassphraseInfo, bool) {
	if k.passphraseInfo == nil {
		return domaintypes.PassphraseInfo{}, false
	}
	return *k.passphraseInfo, true
}

// Encode renders the key in the given form.
func (k *RecoveryKey) Encode(form Form) string { return Encode(&k.secret, form) }

// Base58 returns the checksummed, user-facing form.
func (k *RecoveryKey) Base58() string { return k.Encode(Checksummed) }

// Base64 returns the compact form.
func (k *RecoveryKey) Base64() string { return k.Encode(Compact) }

// PublicKey derives the public backup key. Passphrase info is copied over.
func (k *RecoveryKey) PublicKey() *BackupPublicKey {
	priv := domaintypes.X25519Private(k.secret)
	defer crypto.Wipe(priv[:])

	pub, err := crypto.PublicFromPrivate(priv)
	if err != nil {
		// X25519 with the base point cannot produce the all-zero output.
		panic(fmt.Sprintf("recoverykey: derive public key: %v", err))
	}
	out := &BackupPublicKey{key: pub}
	if k.passphraseInfo != nil {
		info := *k.passphraseInfo
		out.passphraseInfo = &info
	}
	return out
}

// Decrypt opens one backup record. Any failure, including malformed base64,
// is reported as ErrDecryption.
func (k *RecoveryKey) Decrypt(ephemeral, mac, ciphertext string) ([]byte, error) {
	var in crypto.BackupCiphertext
	eph, err := crypto.DecodeBase64(ephemeral)
	if err != nil || len(eph) != len(in.Ephemeral) {
		return nil, fmt.Errorf("%w: bad ephemeral key", ErrDecryption)
	}
	copy(in.Ephemeral[:], eph)
	if in.MAC, err = crypto.DecodeBase64(mac); err != nil {
		return nil, fmt.Errorf("%w: bad mac encoding", ErrDecryption)
	}
	if in.Ciphertext, err = crypto.DecodeBase64(ciphertext); err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext encoding", ErrDecryption)
	}

	priv := domaintypes.X25519Private(k.secret)
	defer crypto.Wipe(priv[:])

	pt, err := crypto.DecryptBackup(priv, in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return pt, nil
}

// DecryptSessionData opens a record and parses the backed up room key.
func (k *RecoveryKey) DecryptSessionData(data domaintypes.SessionData) (domaintypes.BackedUpRoomKey, error) {
	pt, err := k.Decrypt(data.Ephemeral, data.MAC, data.Ciphertext)
	if err != nil {
		return domaintypes.BackedUpRoomKey{}, err
	}
	defer crypto.Wipe(pt)

	var key domaintypes.BackedUpRoomKey
	if err := json.Unmarshal(pt, &key); err != nil {
		return domaintypes.BackedUpRoomKey{}, fmt.Errorf("%w: plaintext is not a room key: %v", ErrDecryption, err)
	}
	return key, nil
}

// Close wipes the secret. The key must not be used afterwards.
func (k *RecoveryKey) Close() {
	k.secret.Wipe()
	runtime.SetFinalizer(k, nil)
}

// String never prints the key material.
func (k *RecoveryKey) String() string { return "RecoveryKey([REDACTED])" }

// LogValue keeps the key out of structured logs.
func (k *RecoveryKey) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("secret", "[REDACTED]")}
	if k.passphraseInfo != nil {
		attrs = append(attrs, slog.Int("iterations", k.passphraseInfo.Iterations))
	}
	return slog.GroupValue(attrs...)
}
