package account

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"keybackup/internal/crypto"
	"keybackup/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
	// ErrInvalidUserID is returned for user IDs not of the form "@local:server".
	ErrInvalidUserID = errors.New("user id must look like @name:server")
	// ErrInvalidDeviceID is returned for an empty or whitespace device ID.
	ErrInvalidDeviceID = errors.New("device id must be non-empty without whitespace")
)

// Service manages the device account using a backing store.
//
// The account holds the device's Ed25519 key pair, used to sign backup
// auth_data and recognised as "our own device" when verifying it.
type Service struct {
	store domain.AccountStore
	log   *slog.Logger
}

// New returns an account service backed by the given store. A nil logger
// discards output.
func New(s domain.AccountStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: s, log: log}
}

// CreateAccount creates a new device account, saves it encrypted with the
// passphrase, and returns it plus a short fingerprint of the signing key.
func (s *Service) CreateAccount(
	passphrase string,
	user domain.UserID,
	device domain.DeviceID,
) (domain.Account, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Account{}, "", ErrWeakPassphrase
	}
	if err := validateUserID(user); err != nil {
		return domain.Account{}, "", err
	}
	if device == "" || strings.ContainsFunc(string(device), unicode.IsSpace) {
		return domain.Account{}, "", ErrInvalidDeviceID
	}

	signingPrivateKey, signingPublicKey, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.Account{}, "", err
	}

	acct := domain.Account{
		UserID:   user,
		DeviceID: device,
		EdPub:    signingPublicKey,
		EdPriv:   signingPrivateKey,
	}
	if err := s.store.SaveAccount(passphrase, acct); err != nil {
		return domain.Account{}, "", err
	}
	fp := fingerprint(acct)
	s.log.Info("account created", "user_id", user, "device_id", device, "fingerprint", fp)
	return acct, fp, nil
}

// LoadAccount decrypts and returns the device account.
func (s *Service) LoadAccount(passphrase string) (domain.Account, error) {
	return s.store.LoadAccount(passphrase)
}

// FingerprintAccount returns a short fingerprint of the device signing key.
func (s *Service) FingerprintAccount(passphrase string) (domain.Fingerprint, error) {
	acct, err := s.store.LoadAccount(passphrase)
	if err != nil {
		return "", err
	}
	return fingerprint(acct), nil
}

func fingerprint(acct domain.Account) domain.Fingerprint {
	return domain.Fingerprint(crypto.Fingerprint(acct.EdPub.Slice()))
}

func validateUserID(user domain.UserID) error {
	local, server, ok := strings.Cut(strings.TrimPrefix(string(user), "@"), ":")
	if !strings.HasPrefix(string(user), "@") || !ok || local == "" || server == "" {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, user)
	}
	return nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.AccountService.
var _ domain.AccountService = (*Service)(nil)
