package signatures

import (
	"crypto/ed25519"
	"fmt"

	"keybackup/internal/crypto"
)

// MaybeSignature is either an Ed25519Signature or an UndecodableSignature.
type MaybeSignature interface {
	// Base64 returns the signature in its wire form. For undecodable entries
	// this is the original source text.
	Base64() string

	isMaybeSignature()
}

// Ed25519Signature is a decoded (not yet verified) Ed25519 signature.
type Ed25519Signature [ed25519.SignatureSize]byte

// Base64 returns the unpadded base64 encoding.
func (s Ed25519Signature) Base64() string { return crypto.EncodeBase64(s[:]) }

func (Ed25519Signature) isMaybeSignature() {}

// UndecodableSignature is a signature entry that could not be parsed.
type UndecodableSignature struct {
	Source string
	Err    error
}

// Base64 returns the original source text.
func (u UndecodableSignature) Base64() string { return u.Source }

func (u UndecodableSignature) Error() string {
	return fmt.Sprintf("undecodable signature %q: %v", u.Source, u.Err)
}

func (u UndecodableSignature) Unwrap() error { return u.Err }

func (UndecodableSignature) isMaybeSignature() {}

// ParseEd25519Signature decodes padded or unpadded base64 of exactly 64 bytes.
func ParseEd25519Signature(s string) (Ed25519Signature, error) {
	var sig Ed25519Signature
	raw, err := crypto.DecodeBase64(s)
	if err != nil {
		return sig, err
	}
	if len(raw) != ed25519.SignatureSize {
		return sig, fmt.Errorf("ed25519 signature: want %d bytes, got %d", ed25519.SignatureSize, len(raw))
	}
	copy(sig[:], raw)
	return sig, nil
}

// Decode never fails: text that is not a valid signature becomes an
// UndecodableSignature.
func Decode(s string) MaybeSignature {
	sig, err := ParseEd25519Signature(s)
	if err != nil {
		return UndecodableSignature{Source: s, Err: err}
	}
	return sig
}

// IsValid reports whether m was decoded successfully.
func IsValid(m MaybeSignature) bool {
	_, ok := m.(Ed25519Signature)
	return ok
}

// AsEd25519 returns the decoded signature, if m holds one.
func AsEd25519(m MaybeSignature) (Ed25519Signature, bool) {
	sig, ok := m.(Ed25519Signature)
	return sig, ok
}

// InvalidSource returns the original text of an undecodable entry.
func InvalidSource(m MaybeSignature) (string, bool) {
	u, ok := m.(UndecodableSignature)
	if !ok {
		return "", false
	}
	return u.Source, true
}
