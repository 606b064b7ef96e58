package interfaces

import (
	"context"

	domaintypes "keybackup/internal/domain/types"
	"keybackup/internal/protocol/recoverykey"
	"keybackup/internal/protocol/signatures"
)

// AccountService creates and inspects the local device account.
type AccountService interface {
	CreateAccount(
		passphrase string,
		user domaintypes.UserID,
		device domaintypes.DeviceID,
	) (domaintypes.Account, domaintypes.Fingerprint, error)
	LoadAccount(passphrase string) (domaintypes.Account, error)
	FingerprintAccount(passphrase string) (domaintypes.Fingerprint, error)
}

// BackupService manages the recovery key and encrypts room keys for backup.
type BackupService interface {
	// CreateRecoveryKey makes a new key, random when recoveryPassphrase is
	// empty, and stores it for version.
	CreateRecoveryKey(passphrase, recoveryPassphrase, version string) (*recoverykey.RecoveryKey, error)
	RestoreRecoveryKey(
		passphrase, encoded string,
		form recoverykey.Form,
		version string,
	) (*recoverykey.RecoveryKey, error)
	RestoreFromPassphrase(
		passphrase, recoveryPassphrase string,
		info domaintypes.PassphraseInfo,
		version string,
	) (*recoverykey.RecoveryKey, error)
	LoadRecoveryKey(passphrase string) (*recoverykey.RecoveryKey, string, error)
	ForgetRecoveryKey() error
	EncryptRoomKeys(
		ctx context.Context,
		passphrase string,
		keys []domaintypes.ExportedRoomKey,
		verified bool,
	) (domaintypes.KeysBackupRequest, domaintypes.RoomKeyCounts, error)
	DecryptRoomKey(passphrase string, data domaintypes.KeyBackupData) (domaintypes.BackedUpRoomKey, error)
}

// TrustService records trust in our own keys and evaluates signed backup
// metadata against it.
type TrustService interface {
	AddDevice(rec domaintypes.DeviceRecord) error
	SetCrossSigningIdentity(id domaintypes.CrossSigningIdentity) error
	VerifyBackup(passphrase string, version domaintypes.BackupVersion) (signatures.SignatureVerification, error)
	SignAuthData(passphrase string, authData []byte) ([]byte, error)
}
