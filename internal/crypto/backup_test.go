package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"keybackup/internal/crypto"
)

func TestBackup_RoundTrip(t *testing.T) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	for _, msg := range [][]byte{
		nil,
		[]byte("x"),
		bytes.Repeat([]byte{'a'}, 16),
		[]byte(`{"algorithm":"m.megolm.v1.aes-sha2","session_key":"AQAAAA"}`),
	} {
		ct, err := crypto.EncryptBackup(pub, msg)
		if err != nil {
			t.Fatalf("EncryptBackup: %v", err)
		}
		if len(ct.MAC) != crypto.BackupMACSize {
			t.Fatalf("mac length %d", len(ct.MAC))
		}
		pt, err := crypto.DecryptBackup(priv, ct)
		if err != nil {
			t.Fatalf("DecryptBackup: %v", err)
		}
		if !bytes.Equal(pt, msg) {
			t.Fatalf("got %q, want %q", pt, msg)
		}
	}
}

func TestBackup_FreshEphemeralPerRecord(t *testing.T) {
	_, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	a, err := crypto.EncryptBackup(pub, []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := crypto.EncryptBackup(pub, []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Ephemeral == b.Ephemeral || bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Fatal("records must not repeat ephemeral keys or ciphertext")
	}
}

func TestBackup_TamperFails(t *testing.T) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	ct, err := crypto.EncryptBackup(pub, []byte("room key material"))
	if err != nil {
		t.Fatal(err)
	}

	for i := range ct.Ciphertext {
		bad := ct
		bad.Ciphertext = append([]byte(nil), ct.Ciphertext...)
		bad.Ciphertext[i] ^= 0x01
		if _, err := crypto.DecryptBackup(priv, bad); !errors.Is(err, crypto.ErrBackupMAC) {
			t.Fatalf("ciphertext byte %d: want ErrBackupMAC, got %v", i, err)
		}
	}
	for i := range ct.MAC {
		bad := ct
		bad.MAC = append([]byte(nil), ct.MAC...)
		bad.MAC[i] ^= 0x80
		if _, err := crypto.DecryptBackup(priv, bad); !errors.Is(err, crypto.ErrBackupMAC) {
			t.Fatalf("mac byte %d: want ErrBackupMAC, got %v", i, err)
		}
	}

	short := ct
	short.Ciphertext = ct.Ciphertext[:len(ct.Ciphertext)-1]
	if _, err := crypto.DecryptBackup(priv, short); !errors.Is(err, crypto.ErrBackupCiphertext) {
		t.Fatalf("truncated ciphertext: want ErrBackupCiphertext, got %v", err)
	}
}

func TestBackup_WrongKeyFails(t *testing.T) {
	_, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatal(err)
	}
	other, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatal(err)
	}
	ct, err := crypto.EncryptBackup(pub, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := crypto.DecryptBackup(other, ct); !errors.Is(err, crypto.ErrBackupMAC) {
		t.Fatalf("want ErrBackupMAC, got %v", err)
	}
}

func TestRandomBytes_ShortSourceFails(t *testing.T) {
	orig := crypto.Reader
	t.Cleanup(func() { crypto.Reader = orig })
	crypto.Reader = bytes.NewReader([]byte{1, 2, 3})

	buf := make([]byte, 32)
	err := crypto.RandomBytes(buf)
	if !errors.Is(err, crypto.ErrEntropy) {
		t.Fatalf("want ErrEntropy, got %v", err)
	}
	if !bytes.Equal(buf, make([]byte, 32)) {
		t.Fatal("partial randomness must be wiped")
	}
}

func TestSignVerifyEd25519(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}
	sig := crypto.SignEd25519(priv, []byte("msg"))
	if !crypto.VerifyEd25519(pub, []byte("msg"), sig) {
		t.Fatal("valid signature rejected")
	}
	if crypto.VerifyEd25519(pub, []byte("other"), sig) {
		t.Fatal("signature over other message accepted")
	}
	if crypto.VerifyEd25519(pub, []byte("msg"), sig[:10]) {
		t.Fatal("short signature accepted")
	}
}

func TestBase64_AcceptsPadding(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	enc := crypto.EncodeBase64(raw)
	if enc != "AQIDBA" {
		t.Fatalf("unexpected encoding %q", enc)
	}
	for _, s := range []string{"AQIDBA", "AQIDBA=="} {
		got, err := crypto.DecodeBase64(s)
		if err != nil || !bytes.Equal(got, raw) {
			t.Fatalf("DecodeBase64(%q) = %x, %v", s, got, err)
		}
	}
}
