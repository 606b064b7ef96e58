package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"keybackup/internal/domain"
	"keybackup/internal/protocol/recoverykey"
)

var (
	// ErrNoRecoveryKey is returned when no recovery key has been stored yet.
	ErrNoRecoveryKey = errors.New("no recovery key stored")
	// ErrMissingVersion is returned when a key is stored without a backup version.
	ErrMissingVersion = errors.New("backup version is required")
)

// Service owns the recovery key lifecycle.
type Service struct {
	store      domain.BackupKeyStore
	iterations int
	log        *slog.Logger
}

// New returns a backup service. iterations is the PBKDF2 round count used for
// new passphrase-derived keys; zero means recoverykey.DefaultIterations.
func New(s domain.BackupKeyStore, iterations int, log *slog.Logger) *Service {
	if iterations == 0 {
		iterations = recoverykey.DefaultIterations
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: s, iterations: iterations, log: log}
}

// CreateRecoveryKey makes a new recovery key and stores it for version. An
// empty recoveryPassphrase gives a random key; otherwise the key is derived
// from it with a fresh salt.
func (s *Service) CreateRecoveryKey(passphrase, recoveryPassphrase, version string) (*recoverykey.RecoveryKey, error) {
	var (
		key *recoverykey.RecoveryKey
		err error
	)
	if recoveryPassphrase == "" {
		key, err = recoverykey.NewRandom()
	} else {
		key, err = recoverykey.NewFromPassphraseWithIterations(recoveryPassphrase, s.iterations)
	}
	if err != nil {
		return nil, err
	}
	if err := s.save(passphrase, key, version); err != nil {
		key.Close()
		return nil, err
	}
	s.log.Info("recovery key created",
		"backup_version", version,
		"derived", recoveryPassphrase != "",
		"public_key_fingerprint", key.PublicKey().Fingerprint())
	return key, nil
}

// RestoreRecoveryKey decodes a recovery key the user typed in and stores it.
func (s *Service) RestoreRecoveryKey(
	passphrase, encoded string,
	form recoverykey.Form,
	version string,
) (*recoverykey.RecoveryKey, error) {
	key, err := recoverykey.FromEncoding(encoded, form)
	if err != nil {
		return nil, fmt.Errorf("restore recovery key: %w", err)
	}
	if err := s.save(passphrase, key, version); err != nil {
		key.Close()
		return nil, err
	}
	s.log.Info("recovery key restored", "backup_version", version, "form", form)
	return key, nil
}

// RestoreFromPassphrase re-derives a recovery key from its passphrase and the
// parameters advertised by the backup, then stores it.
func (s *Service) RestoreFromPassphrase(
	passphrase, recoveryPassphrase string,
	info domain.PassphraseInfo,
	version string,
) (*recoverykey.RecoveryKey, error) {
	key, err := recoverykey.FromPassphrase(recoveryPassphrase, info.Salt, info.Iterations)
	if err != nil {
		return nil, fmt.Errorf("restore recovery key: %w", err)
	}
	if err := s.save(passphrase, key, version); err != nil {
		key.Close()
		return nil, err
	}
	s.log.Info("recovery key derived", "backup_version", version, "iterations", info.Iterations)
	return key, nil
}

// LoadRecoveryKey returns the stored key and its backup version. The caller
// must Close the key.
func (s *Service) LoadRecoveryKey(passphrase string) (*recoverykey.RecoveryKey, string, error) {
	keys, err := s.store.LoadBackupKeys(passphrase)
	if err != nil {
		return nil, "", err
	}
	if keys.DecryptionKeyBase64 == "" {
		return nil, "", ErrNoRecoveryKey
	}
	key, err := recoverykey.FromBase64(keys.DecryptionKeyBase64)
	if err != nil {
		return nil, "", fmt.Errorf("stored recovery key: %w", err)
	}
	return key, keys.BackupVersion, nil
}

// ForgetRecoveryKey deletes the stored key.
func (s *Service) ForgetRecoveryKey() error {
	if err := s.store.DeleteBackupKeys(); err != nil {
		return err
	}
	s.log.Info("recovery key forgotten")
	return nil
}

// EncryptRoomKeys encrypts keys for upload to the stored backup version.
// Keys whose session export cannot be parsed are skipped and not counted as
// backed up. When the same session appears twice, the copy that knows more of
// the session (lower first index) wins.
func (s *Service) EncryptRoomKeys(
	ctx context.Context,
	passphrase string,
	keys []domain.ExportedRoomKey,
	verified bool,
) (domain.KeysBackupRequest, domain.RoomKeyCounts, error) {
	key, version, err := s.LoadRecoveryKey(passphrase)
	if err != nil {
		return domain.KeysBackupRequest{}, domain.RoomKeyCounts{}, err
	}
	pub := key.PublicKey()
	key.Close()

	req := domain.KeysBackupRequest{Rooms: map[string]domain.RoomKeyBackup{}}
	counts := domain.RoomKeyCounts{Total: len(keys)}
	for _, rk := range keys {
		data, err := pub.Encrypt(ctx, rk, verified)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.KeysBackupRequest{}, domain.RoomKeyCounts{}, ctxErr
			}
			if errors.Is(err, recoverykey.ErrInvalidSessionKey) {
				s.log.Warn("skipping room key", "room_id", rk.RoomID, "session_id", rk.SessionID, "err", err)
				continue
			}
			return domain.KeysBackupRequest{}, domain.RoomKeyCounts{}, err
		}

		room, ok := req.Rooms[rk.RoomID]
		if !ok {
			room = domain.RoomKeyBackup{Sessions: map[string]domain.KeyBackupData{}}
			req.Rooms[rk.RoomID] = room
		}
		if prev, dup := room.Sessions[rk.SessionID]; dup {
			if prev.FirstMessageIndex <= data.FirstMessageIndex {
				continue
			}
		} else {
			counts.BackedUp++
		}
		room.Sessions[rk.SessionID] = data
	}

	s.log.Info("room keys encrypted",
		"backup_version", version,
		"total", counts.Total,
		"backed_up", counts.BackedUp)
	return req, counts, nil
}

// DecryptRoomKey opens one backed up room key with the stored recovery key.
func (s *Service) DecryptRoomKey(passphrase string, data domain.KeyBackupData) (domain.BackedUpRoomKey, error) {
	key, _, err := s.LoadRecoveryKey(passphrase)
	if err != nil {
		return domain.BackedUpRoomKey{}, err
	}
	defer key.Close()
	return key.DecryptSessionData(data.SessionData)
}

func (s *Service) save(passphrase string, key *recoverykey.RecoveryKey, version string) error {
	if version == "" {
		return ErrMissingVersion
	}
	return s.store.SaveBackupDecryptionKey(passphrase, key.Base64(), version)
}

// Compile-time assertion that Service implements domain.BackupService.
var _ domain.BackupService = (*Service)(nil)
