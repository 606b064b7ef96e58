package interfaces

import domaintypes "keybackup/internal/domain/types"

// AccountStore persists the local account, encrypted under the local
// passphrase.
type AccountStore interface {
	SaveAccount(passphrase string, acct domaintypes.Account) error
	LoadAccount(passphrase string) (domaintypes.Account, error)
}

// BackupKeyStore remembers the backup decryption key and the backup version
// it belongs to.
type BackupKeyStore interface {
	SaveBackupDecryptionKey(passphrase, keyBase64, version string) error
	// LoadBackupKeys returns empty fields when nothing is stored.
	LoadBackupKeys(passphrase string) (domaintypes.BackupKeys, error)
	DeleteBackupKeys() error
}

// TrustStore holds what we know about our own devices and cross-signing
// identity.
type TrustStore interface {
	SaveDevice(rec domaintypes.DeviceRecord) error
	ListDevices() ([]domaintypes.DeviceRecord, error)
	SaveCrossSigningIdentity(id domaintypes.CrossSigningIdentity) error
	LoadCrossSigningIdentity() (domaintypes.CrossSigningIdentity, bool, error)
}
