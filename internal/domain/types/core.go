package types

import "strings"

// AlgorithmEd25519 is the key algorithm prefix of Ed25519 key IDs.
const AlgorithmEd25519 = "ed25519"

// UserID identifies an account, e.g. "@alice:example.org".
type UserID string

// String returns the string form of the user ID.
func (u UserID) String() string { return string(u) }

// DeviceID identifies one device of an account.
type DeviceID string

// String returns the string form of the device ID.
func (d DeviceID) String() string { return string(d) }

// KeyID names a signing key as "<algorithm>:<name>", e.g. "ed25519:DEVICEID".
type KeyID string

// NewKeyID joins algorithm and name.
func NewKeyID(algorithm, name string) KeyID { return KeyID(algorithm + ":" + name) }

// String returns the string form of the key ID.
func (k KeyID) String() string { return string(k) }

// Algorithm returns the part before the first colon, or "" if there is none.
func (k KeyID) Algorithm() string {
	alg, _, ok := strings.Cut(string(k), ":")
	if !ok {
		return ""
	}
	return alg
}

// Name returns the part after the first colon, or "" if there is none.
func (k KeyID) Name() string {
	_, name, _ := strings.Cut(string(k), ":")
	return name
}

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
