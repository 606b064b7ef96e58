// Package recoverykey creates, derives, encodes and uses the backup recovery
// key.
//
// A RecoveryKey is 32 secret bytes, optionally derived from a passphrase with
// PBKDF2-HMAC-SHA-512. It can be written in two forms:
//
//   - Compact: unpadded base64 of the raw bytes.
//   - Checksummed: base58 of 0x8B 0x01 || key || parity, grouped in blocks of
//     four characters. The parity byte catches transcription errors.
//
// The public half (BackupPublicKey) encrypts room keys for upload; only the
// RecoveryKey can decrypt them.
//
// Concurrency: a RecoveryKey is NOT safe for concurrent use. Close wipes the
// secret, so callers must serialise access and not share a key across
// goroutines without their own locking.
package recoverykey
