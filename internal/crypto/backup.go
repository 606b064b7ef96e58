package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	domaintypes "keybackup/internal/domain/types"
	"keybackup/internal/util/memzero"
)

const (
	backupAESKeySize = 32
	backupMACKeySize = 32
	backupIVSize     = aes.BlockSize
	backupKDFSize    = backupAESKeySize + backupMACKeySize + backupIVSize

	// BackupMACSize is the truncated HMAC length carried in SessionData.
	BackupMACSize = 8
)

var (
	// ErrBackupMAC is returned when the MAC does not match the ciphertext.
	ErrBackupMAC = errors.New("backup record MAC mismatch")
	// ErrBackupCiphertext is returned for ciphertext that is not a whole
	// number of blocks or that carries invalid padding.
	ErrBackupCiphertext = errors.New("malformed backup ciphertext")
)

// BackupCiphertext is one encrypted backup record in raw bytes.
type BackupCiphertext struct {
	Ephemeral  domaintypes.X25519Public
	Ciphertext []byte
	MAC        []byte
}

// EncryptBackup encrypts plaintext to the backup public key.
//
// A fresh ephemeral X25519 key is agreed with pub; HKDF-SHA-256 (zero salt,
// empty info) expands the shared secret into an AES-256 key, an HMAC-SHA-256
// key and a CBC IV. The MAC covers the ciphertext and is truncated to
// BackupMACSize bytes.
func EncryptBackup(pub domaintypes.X25519Public, plaintext []byte) (BackupCiphertext, error) {
	ephPriv, ephPub, err := GenerateX25519()
	if err != nil {
		return BackupCiphertext{}, err
	}
	defer memzero.Zero(ephPriv[:])

	shared, err := DH(ephPriv, pub)
	if err != nil {
		return BackupCiphertext{}, err
	}
	defer memzero.Zero(shared[:])

	okm, err := backupKeys(shared[:])
	if err != nil {
		return BackupCiphertext{}, err
	}
	defer memzero.Zero(okm)

	block, err := aes.NewCipher(okm[:backupAESKeySize])
	if err != nil {
		return BackupCiphertext{}, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	defer memzero.Zero(padded)

	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, okm[backupAESKeySize+backupMACKeySize:]).CryptBlocks(ct, padded)

	return BackupCiphertext{
		Ephemeral:  ephPub,
		Ciphertext: ct,
		MAC:        backupMAC(okm[backupAESKeySize:backupAESKeySize+backupMACKeySize], ct),
	}, nil
}

// DecryptBackup reverses EncryptBackup with the backup private key. The MAC is
// checked before any decryption happens.
func DecryptBackup(priv domaintypes.X25519Private, in BackupCiphertext) ([]byte, error) {
	if len(in.Ciphertext) == 0 || len(in.Ciphertext)%aes.BlockSize != 0 {
		return nil, ErrBackupCiphertext
	}

	shared, err := DH(priv, in.Ephemeral)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(shared[:])

	okm, err := backupKeys(shared[:])
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(okm)

	want := backupMAC(okm[backupAESKeySize:backupAESKeySize+backupMACKeySize], in.Ciphertext)
	if !hmac.Equal(want, in.MAC) {
		return nil, ErrBackupMAC
	}

	block, err := aes.NewCipher(okm[:backupAESKeySize])
	if err != nil {
		return nil, err
	}
	padded := make([]byte, len(in.Ciphertext))
	cipher.NewCBCDecrypter(block, okm[backupAESKeySize+backupMACKeySize:]).CryptBlocks(padded, in.Ciphertext)

	pt, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		memzero.Zero(padded)
		return nil, err
	}
	out := append([]byte(nil), pt...)
	memzero.Zero(padded)
	return out, nil
}

func backupKeys(shared []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, shared, make([]byte, sha256.Size), nil)
	okm := make([]byte, backupKDFSize)
	if _, err := io.ReadFull(r, okm); err != nil {
		return nil, err
	}
	return okm, nil
}

func backupMAC(key, ct []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(ct)
	return h.Sum(nil)[:BackupMACSize]
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, ErrBackupCiphertext
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, ErrBackupCiphertext
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrBackupCiphertext
		}
	}
	return b[:len(b)-n], nil
}
