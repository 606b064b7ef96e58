// Package crypto exposes the minimal primitives used by keybackup.
//
// Contents
//
//   - X25519 key generation and Diffie–Hellman (GenerateX25519, DH,
//     PublicFromPrivate)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - The m.megolm_backup.v1.curve25519-aes-sha2 record cipher (EncryptBackup,
//     DecryptBackup)
//   - Unpadded base64 helpers (EncodeBase64, DecodeBase64)
//   - Secure randomness (RandomBytes) and short fingerprints (Fingerprint)
//
// # Notes
//
// Keys are fixed-size array types from internal/domain/types to avoid
// accidental reallocations. Intermediate secrets (shared secrets, derived
// AES/MAC keys, padded plaintext) are wiped with memzero before returning.
// Callers own and must wipe the private keys they pass in.
package crypto
