package trust

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"keybackup/internal/domain"
	"keybackup/internal/protocol/signatures"
)

// Service evaluates backup auth_data signatures.
type Service struct {
	accounts domain.AccountStore
	store    domain.TrustStore
	log      *slog.Logger
}

// New returns a trust service. A nil logger discards output.
func New(accounts domain.AccountStore, store domain.TrustStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{accounts: accounts, store: store, log: log}
}

// AddDevice records another device of our own user.
func (s *Service) AddDevice(rec domain.DeviceRecord) error {
	if rec.DeviceID == "" {
		return fmt.Errorf("add device: empty device id")
	}
	if err := s.store.SaveDevice(rec); err != nil {
		return err
	}
	s.log.Info("device recorded", "device_id", rec.DeviceID, "trusted", rec.Trusted)
	return nil
}

// SetCrossSigningIdentity records our user's master cross-signing key.
func (s *Service) SetCrossSigningIdentity(id domain.CrossSigningIdentity) error {
	if err := s.store.SaveCrossSigningIdentity(id); err != nil {
		return err
	}
	s.log.Info("cross-signing identity recorded", "verified", id.Verified)
	return nil
}

// VerifyBackup checks the signatures on a backup version's auth_data. A
// version with an algorithm we do not support yields Missing for both
// states.
func (s *Service) VerifyBackup(
	passphrase string,
	version domain.BackupVersion,
) (signatures.SignatureVerification, error) {
	if version.Algorithm != domain.BackupAlgorithmMegolmV1 {
		s.log.Warn("unsupported backup algorithm", "algorithm", version.Algorithm)
		return signatures.SignatureVerification{}, nil
	}

	tc, err := s.trustContext(passphrase)
	if err != nil {
		return signatures.SignatureVerification{}, err
	}
	v, err := signatures.VerifyJSON(version.AuthData, tc)
	if err != nil {
		return signatures.SignatureVerification{}, fmt.Errorf("verify backup auth_data: %w", err)
	}
	s.log.Info("backup verified",
		"backup_version", version.Version,
		"device_state", v.DeviceState,
		"user_state", v.UserState,
		"trusted", v.Trusted())
	return v, nil
}

// SignAuthData signs authData with our device key and returns it with the
// signature merged into its "signatures" field.
func (s *Service) SignAuthData(passphrase string, authData []byte) ([]byte, error) {
	if !json.Valid(authData) {
		return nil, fmt.Errorf("sign auth_data: %w", signatures.ErrNotObject)
	}
	acct, err := s.accounts.LoadAccount(passphrase)
	if err != nil {
		return nil, err
	}
	return signatures.SignObject(acct, authData)
}

func (s *Service) trustContext(passphrase string) (signatures.TrustContext, error) {
	acct, err := s.accounts.LoadAccount(passphrase)
	if err != nil {
		return signatures.TrustContext{}, err
	}
	devices, err := s.store.ListDevices()
	if err != nil {
		return signatures.TrustContext{}, err
	}
	tc := signatures.TrustContext{
		UserID: acct.UserID,
		Device: domain.DeviceRecord{DeviceID: acct.DeviceID, Ed25519: acct.EdPub, Trusted: true},
	}
	for _, d := range devices {
		if d.DeviceID != acct.DeviceID {
			tc.OtherDevices = append(tc.OtherDevices, d)
		}
	}
	id, ok, err := s.store.LoadCrossSigningIdentity()
	if err != nil {
		return signatures.TrustContext{}, err
	}
	if ok {
		tc.CrossSigning = &id
	}
	return tc, nil
}

// Compile-time assertion that Service implements domain.TrustService.
var _ domain.TrustService = (*Service)(nil)
