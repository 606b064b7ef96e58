// Package store provides file-based persistence for keybackup's local state.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. Secrets (the device account and the
// backup decryption key) are sealed with a passphrase-derived key before they
// touch the disk. All methods are concurrency-safe via internal locking.
// Stored files live under the configured home directory.
//
// The package includes stores for:
//   - The device account (AccountFileStore)
//   - The backup decryption key and version (BackupKeyFileStore)
//   - Own devices and the cross-signing identity (TrustFileStore)
package store
