package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"keybackup/internal/crypto"
	"keybackup/internal/domain"
)

const (
	accountFilename = "account.json.enc"
	accountKind     = "account"
)

// AccountFileStore persists the local device account to disk, encrypted with
// the local passphrase.
type AccountFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewAccountFileStore returns an AccountFileStore rooted at dir.
func NewAccountFileStore(dir string) *AccountFileStore {
	return &AccountFileStore{dir: dir}
}

// SaveAccount writes the encrypted account to disk, replacing any previous one.
func (s *AccountFileStore) SaveAccount(passphrase string, acct domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(acct)
	if err != nil {
		return err
	}
	defer crypto.Wipe(raw)

	ct, err := seal(passphrase, accountKind, raw, defaultScrypt)
	if err != nil {
		return fmt.Errorf("seal account: %w", err)
	}
	return writeFile(filepath.Join(s.dir, accountFilename), ct, 0o600)
}

// LoadAccount reads and decrypts the account. A missing account yields an
// error matching os.ErrNotExist.
func (s *AccountFileStore) LoadAccount(passphrase string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, accountFilename))
	if err != nil {
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	pt, err := open(passphrase, accountKind, b)
	if err != nil {
		return domain.Account{}, err
	}
	defer crypto.Wipe(pt)

	var acct domain.Account
	if err := json.Unmarshal(pt, &acct); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

// Compile-time assertion that AccountFileStore implements domain.AccountStore.
var _ domain.AccountStore = (*AccountFileStore)(nil)
