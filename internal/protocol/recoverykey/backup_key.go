package recoverykey

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"keybackup/internal/crypto"
	domaintypes "keybackup/internal/domain/types"
	"keybackup/internal/protocol/signatures"
)

// ErrInvalidSessionKey is returned when an exported room key carries a
// session key that is not a Megolm session export.
var ErrInvalidSessionKey = errors.New("invalid exported session key")

// Exported Megolm session keys start with a version byte and a big-endian
// message index.
const (
	megolmExportVersion = 0x01
	megolmExportMinSize = 1 + 4
)

// BackupPublicKey is the public part of the backup key.
type BackupPublicKey struct {
	key            domaintypes.X25519Public
	passphraseInfo *domaintypes.PassphraseInfo
	signatures     signatures.Signatures
}

// AuthData is the auth_data object of a megolm v1 backup version.
type AuthData struct {
	PublicKey            string                 `json:"public_key"`
	PrivateKeySalt       string                 `json:"private_key_salt,omitempty"`
	PrivateKeyIterations int                    `json:"private_key_iterations,omitempty"`
	Signatures           *signatures.Signatures `json:"signatures,omitempty"`
}

// ParseBackupPublicKey decodes a base64 public key.
func ParseBackupPublicKey(s string) (*BackupPublicKey, error) {
	var k BackupPublicKey
	if err := k.key.UnmarshalText([]byte(s)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return &k, nil
}

// FromAuthData builds the public key a backup version advertises, including
// its passphrase info and signatures.
func FromAuthData(ad AuthData) (*BackupPublicKey, error) {
	k, err := ParseBackupPublicKey(ad.PublicKey)
	if err != nil {
		return nil, err
	}
	if ad.PrivateKeySalt != "" {
		k.passphraseInfo = &domaintypes.PassphraseInfo{
			Salt:       ad.PrivateKeySalt,
			Iterations: ad.PrivateKeyIterations,
		}
	}
	if ad.Signatures != nil {
		k.signatures.Merge(ad.Signatures)
	}
	return k, nil
}

// Key returns the raw Curve25519 public key.
func (k *BackupPublicKey) Key() domaintypes.X25519Public { return k.key }

// Base64 returns the unpadded base64 public key.
func (k *BackupPublicKey) Base64() string { return crypto.EncodeBase64(k.key[:]) }

// Algorithm returns the backup algorithm this key is used with.
func (k *BackupPublicKey) Algorithm() string { return domaintypes.BackupAlgorithmMegolmV1 }

// PassphraseInfo returns the derivation parameters of the private key, if any.
func (k *BackupPublicKey) PassphraseInfo() (domaintypes.PassphraseInfo, bool) {
	if k.passphraseInfo == nil {
		return domaintypes.PassphraseInfo{}, false
	}
	return *k.passphraseInfo, true
}

// Signatures returns the signatures attesting to this key. The collection is
// owned by k.
func (k *BackupPublicKey) Signatures() *signatures.Signatures { return &k.signatures }

// AuthData returns the auth_data object for a new backup version.
func (k *BackupPublicKey) AuthData() AuthData {
	ad := AuthData{PublicKey: k.Base64()}
	if k.passphraseInfo != nil {
		ad.PrivateKeySalt = k.passphraseInfo.Salt
		ad.PrivateKeyIterations = k.passphraseInfo.Iterations
	}
	if !k.signatures.IsEmpty() {
		sigs := signatures.New()
		sigs.Merge(&k.signatures)
		ad.Signatures = sigs
	}
	return ad
}

// Fingerprint returns a short display fingerprint of the public key.
func (k *BackupPublicKey) Fingerprint() domaintypes.Fingerprint {
	return domaintypes.Fingerprint(crypto.Fingerprint(k.key[:]))
}

// Encrypt encrypts an exported room key for upload. The call is stateless; a
// cancelled context discards the result.
func (k *BackupPublicKey) Encrypt(
	ctx context.Context,
	room domaintypes.ExportedRoomKey,
	verified bool,
) (domaintypes.KeyBackupData, error) {
	if err := ctx.Err(); err != nil {
		return domaintypes.KeyBackupData{}, err
	}

	index, err := firstKnownIndex(room.SessionKey)
	if err != nil {
		return domaintypes.KeyBackupData{}, err
	}

	pt, err := json.Marshal(domaintypes.BackedUpRoomKey{
		Algorithm:                    room.Algorithm,
		SenderKey:                    room.SenderKey,
		SessionKey:                   room.SessionKey,
		SenderClaimedKeys:            room.SenderClaimedKeys,
		ForwardingCurve25519KeyChain: room.ForwardingCurve25519KeyChain,
	})
	if err != nil {
		return domaintypes.KeyBackupData{}, err
	}
	defer crypto.Wipe(pt)

	ct, err := crypto.EncryptBackup(k.key, pt)
	if err != nil {
		return domaintypes.KeyBackupData{}, fmt.Errorf("encrypt room key %s: %w", room.SessionID, err)
	}
	if err := ctx.Err(); err != nil {
		return domaintypes.KeyBackupData{}, err
	}

	return domaintypes.KeyBackupData{
		FirstMessageIndex: int64(index),
		ForwardedCount:    int64(len(room.ForwardingCurve25519KeyChain)),
		IsVerified:        verified,
		SessionData: domaintypes.SessionData{
			Ephemeral:  crypto.EncodeBase64(ct.Ephemeral[:]),
			Ciphertext: crypto.EncodeBase64(ct.Ciphertext),
			MAC:        crypto.EncodeBase64(ct.MAC),
		},
	}, nil
}

func firstKnownIndex(sessionKey string) (uint32, error) {
	raw, err := crypto.DecodeBase64(sessionKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSessionKey, err)
	}
	defer crypto.Wipe(raw)
	if len(raw) < megolmExportMinSize || raw[0] != megolmExportVersion {
		return 0, ErrInvalidSessionKey
	}
	return binary.BigEndian.Uint32(raw[1:5]), nil
}
