package types

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// MarshalText encodes the key as unpadded base64.
func (p X25519Public) MarshalText() ([]byte, error) { return marshalKey(p[:]), nil }

// UnmarshalText decodes padded or unpadded base64.
func (p *X25519Public) UnmarshalText(text []byte) error { return unmarshalKey("x25519 public", p[:], text) }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Base64 returns the unpadded base64 form used in key IDs and JSON.
func (p Ed25519Public) Base64() string { return string(marshalKey(p[:])) }

// MarshalText encodes the key as unpadded base64.
func (p Ed25519Public) MarshalText() ([]byte, error) { return marshalKey(p[:]), nil }

// UnmarshalText decodes padded or unpadded base64.
func (p *Ed25519Public) UnmarshalText(text []byte) error {
	return unmarshalKey("ed25519 public", p[:], text)
}

// Ed25519Private is an Ed25519 signing private key (ed25519.PrivateKey layout).
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// MarshalText encodes the key as unpadded base64. Only used inside encrypted stores.
func (k Ed25519Private) MarshalText() ([]byte, error) { return marshalKey(k[:]), nil }

// UnmarshalText decodes padded or unpadded base64.
func (k *Ed25519Private) UnmarshalText(text []byte) error {
	return unmarshalKey("ed25519 private", k[:], text)
}

func marshalKey(b []byte) []byte {
	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(b)))
	base64.RawStdEncoding.Encode(out, b)
	return out
}

func unmarshalKey(kind string, dst, text []byte) error {
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(string(text), "="))
	if err != nil {
		return fmt.Errorf("%s key: %w", kind, err)
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("%s key: want %d bytes, got %d", kind, len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}
