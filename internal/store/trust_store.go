package store

import (
	"path/filepath"
	"sort"
	"sync"

	"keybackup/internal/domain"
)

const trustFilename = "trust.json"

// trustFile is the on-disk layout. Only public keys and flags are stored, so
// the file is not encrypted.
type trustFile struct {
	Devices      map[domain.DeviceID]domain.DeviceRecord `json:"devices"`
	CrossSigning *domain.CrossSigningIdentity            `json:"cross_signing,omitempty"`
}

// TrustFileStore persists our own devices and cross-signing identity.
type TrustFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewTrustFileStore returns a TrustFileStore rooted at dir.
func NewTrustFileStore(dir string) *TrustFileStore {
	return &TrustFileStore{dir: dir}
}

func (s *TrustFileStore) load() (trustFile, error) {
	tf := trustFile{Devices: map[domain.DeviceID]domain.DeviceRecord{}}
	if err := readJSON(filepath.Join(s.dir, trustFilename), &tf); err != nil {
		return trustFile{}, err
	}
	if tf.Devices == nil {
		tf.Devices = map[domain.DeviceID]domain.DeviceRecord{}
	}
	return tf, nil
}

// SaveDevice adds or replaces the record for rec.DeviceID.
func (s *TrustFileStore) SaveDevice(rec domain.DeviceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf, err := s.load()
	if err != nil {
		return err
	}
	tf.Devices[rec.DeviceID] = rec
	return writeJSON(filepath.Join(s.dir, trustFilename), tf, 0o600)
}

// ListDevices returns all known devices ordered by device ID.
func (s *TrustFileStore) ListDevices() ([]domain.DeviceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.DeviceRecord, 0, len(tf.Devices))
	for _, rec := range tf.Devices {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

// SaveCrossSigningIdentity replaces the stored cross-signing identity.
func (s *TrustFileStore) SaveCrossSigningIdentity(id domain.CrossSigningIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf, err := s.load()
	if err != nil {
		return err
	}
	tf.CrossSigning = &id
	return writeJSON(filepath.Join(s.dir, trustFilename), tf, 0o600)
}

// LoadCrossSigningIdentity returns the stored identity, if any.
func (s *TrustFileStore) LoadCrossSigningIdentity() (domain.CrossSigningIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tf, err := s.load()
	if err != nil {
		return domain.CrossSigningIdentity{}, false, err
	}
	if tf.CrossSigning == nil {
		return domain.CrossSigningIdentity{}, false, nil
	}
	return *tf.CrossSigning, true, nil
}

// Compile-time assertion that TrustFileStore implements domain.TrustStore.
var _ domain.TrustStore = (*TrustFileStore)(nil)
