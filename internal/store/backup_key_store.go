package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"keybackup/internal/crypto"
	"keybackup/internal/domain"
)

const (
	backupKeysFilename = "backup_keys.json.enc"
	backupKeysKind     = "backup_keys"
)

// BackupKeyFileStore remembers the backup decryption key and its backup
// version. The key is sealed with the local passphrase; the version is stored
// alongside it so a key is never reused against the wrong backup.
type BackupKeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewBackupKeyFileStore returns a BackupKeyFileStore rooted at dir.
func NewBackupKeyFileStore(dir string) *BackupKeyFileStore {
	return &BackupKeyFileStore{dir: dir}
}

// SaveBackupDecryptionKey stores keyBase64 for version, replacing any
// previously saved key.
func (s *BackupKeyFileStore) SaveBackupDecryptionKey(passphrase, keyBase64, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(domain.BackupKeys{
		DecryptionKeyBase64: keyBase64,
		BackupVersion:       version,
	})
	if err != nil {
		return err
	}
	defer crypto.Wipe(raw)

	ct, err := seal(passphrase, backupKeysKind, raw, defaultScrypt)
	if err != nil {
		return fmt.Errorf("seal backup key: %w", err)
	}
	return writeFile(filepath.Join(s.dir, backupKeysFilename), ct, 0o600)
}

// LoadBackupKeys returns the stored key and version. Nothing stored yields
// empty BackupKeys and no error.
func (s *BackupKeyFileStore) LoadBackupKeys(passphrase string) (domain.BackupKeys, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, backupKeysFilename))
	if err != nil {
		return domain.BackupKeys{}, err
	}
	if b == nil {
		return domain.BackupKeys{}, nil
	}
	pt, err := open(passphrase, backupKeysKind, b)
	if err != nil {
		return domain.BackupKeys{}, err
	}
	defer crypto.Wipe(pt)

	var keys domain.BackupKeys
	if err := json.Unmarshal(pt, &keys); err != nil {
		return domain.BackupKeys{}, err
	}
	return keys, nil
}

// DeleteBackupKeys forgets the stored key, if any.
func (s *BackupKeyFileStore) DeleteBackupKeys() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFile(filepath.Join(s.dir, backupKeysFilename))
}

// Compile-time assertion that BackupKeyFileStore implements domain.BackupKeyStore.
var _ domain.BackupKeyStore = (*BackupKeyFileStore)(nil)
