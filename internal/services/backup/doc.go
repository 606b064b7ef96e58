// Package backup manages the recovery key and encrypts room keys for the
// server-side key backup.
//
// The recovery key is kept in the domain.BackupKeyStore, sealed with the local
// passphrase, together with the backup version it belongs to. Room keys are
// encrypted with the public half only; decrypting needs the stored key.
package backup
