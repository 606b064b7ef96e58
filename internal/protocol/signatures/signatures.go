package signatures

import (
	"encoding/json"
	"sort"

	domaintypes "keybackup/internal/domain/types"
)

// Signatures maps signer → key ID → signature. The zero value is empty and
// ready to use.
type Signatures struct {
	m map[domaintypes.UserID]map[domaintypes.KeyID]MaybeSignature
}

// New returns an empty collection.
func New() *Signatures { return &Signatures{} }

// Add stores sig for (signer, keyID) and returns the entry it replaced.
func (s *Signatures) Add(
	signer domaintypes.UserID,
	keyID domaintypes.KeyID,
	sig Ed25519Signature,
) (MaybeSignature, bool) {
	return s.AddMaybe(signer, keyID, sig)
}

// AddMaybe is Add for entries that may be undecodable.
func (s *Signatures) AddMaybe(
	signer domaintypes.UserID,
	keyID domaintypes.KeyID,
	sig MaybeSignature,
) (MaybeSignature, bool) {
	if s.m == nil {
		s.m = make(map[domaintypes.UserID]map[domaintypes.KeyID]MaybeSignature)
	}
	byKey, ok := s.m[signer]
	if !ok {
		byKey = make(map[domaintypes.KeyID]MaybeSignature)
		s.m[signer] = byKey
	}
	prev, had := byKey[keyID]
	byKey[keyID] = sig
	return prev, had
}

// AddSource decodes source and stores the result, keeping it even when it
// is not a valid signature.
func (s *Signatures) AddSource(
	signer domaintypes.UserID,
	keyID domaintypes.KeyID,
	source string,
) (MaybeSignature, bool) {
	return s.AddMaybe(signer, keyID, Decode(source))
}

// Get returns the entry for (signer, keyID), decodable or not.
func (s *Signatures) Get(signer domaintypes.UserID, keyID domaintypes.KeyID) (MaybeSignature, bool) {
	sig, ok := s.m[signer][keyID]
	return sig, ok
}

// GetSignature returns the entry for (signer, keyID) only if it decoded.
func (s *Signatures) GetSignature(
	signer domaintypes.UserID,
	keyID domaintypes.KeyID,
) (Ed25519Signature, bool) {
	m, ok := s.Get(signer, keyID)
	if !ok {
		return Ed25519Signature{}, false
	}
	return AsEd25519(m)
}

// GetAll returns a copy of all entries made by signer.
func (s *Signatures) GetAll(signer domaintypes.UserID) (map[domaintypes.KeyID]MaybeSignature, bool) {
	byKey, ok := s.m[signer]
	if !ok {
		return nil, false
	}
	out := make(map[domaintypes.KeyID]MaybeSignature, len(byKey))
	for k, v := range byKey {
		out[k] = v
	}
	return out, true
}

// Signers returns the signers in sorted order.
func (s *Signatures) Signers() []domaintypes.UserID {
	out := make([]domaintypes.UserID, 0, len(s.m))
	for u := range s.m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear removes every signature.
func (s *Signatures) Clear() { s.m = nil }

// Count returns the number of (signer, key ID) entries.
func (s *Signatures) Count() int {
	n := 0
	for _, byKey := range s.m {
		n += len(byKey)
	}
	return n
}

// IsEmpty reports whether the collection holds no signatures.
func (s *Signatures) IsEmpty() bool { return s.Count() == 0 }

// Merge copies every entry of other into s, overwriting collisions.
func (s *Signatures) Merge(other *Signatures) {
	for signer, byKey := range other.m {
		for keyID, sig := range byKey {
			s.AddMaybe(signer, keyID, sig)
		}
	}
}

// MarshalJSON encodes {signer: {keyID: base64}}. Undecodable entries are
// written back with their original text.
func (s *Signatures) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]string, len(s.m))
	for signer, byKey := range s.m {
		if len(byKey) == 0 {
			continue
		}
		inner := make(map[string]string, len(byKey))
		for keyID, sig := range byKey {
			inner[keyID.String()] = sig.Base64()
		}
		out[signer.String()] = inner
	}
	return json.Marshal(out)
}

// UnmarshalJSON replaces the collection with the decoded map.
func (s *Signatures) UnmarshalJSON(data []byte) error {
	var in map[string]map[string]string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Clear()
	for signer, byKey := range in {
		for keyID, source := range byKey {
			s.AddSource(domaintypes.UserID(signer), domaintypes.KeyID(keyID), source)
		}
	}
	return nil
}

// JSON returns the canonical JSON form of the collection.
func (s *Signatures) JSON() (string, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	canon, err := Canonicalize(raw)
	if err != nil {
		return "", err
	}
	return string(canon), nil
}
