package recoverykey_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keybackup/internal/crypto"
	domaintypes "keybackup/internal/domain/types"
	"keybackup/internal/protocol/recoverykey"
	"keybackup/internal/protocol/signatures"
)

// megolmExport builds a session export: version, index, ratchet, signing key.
func megolmExport(index uint32) string {
	raw := make([]byte, 1+4+128+32)
	raw[0] = 0x01
	binary.BigEndian.PutUint32(raw[1:5], index)
	for i := 5; i < len(raw); i++ {
		raw[i] = byte(i)
	}
	return crypto.EncodeBase64(raw)
}

func roomKey(index uint32, forwarders ...string) domaintypes.ExportedRoomKey {
	return domaintypes.ExportedRoomKey{
		Algorithm:                    "m.megolm.v1.aes-sha2",
		RoomID:                       "!room:example.org",
		SenderKey:                    "sender-curve25519",
		SessionID:                    "session-1",
		SessionKey:                   megolmExport(index),
		SenderClaimedKeys:            map[string]string{"ed25519": "sender-ed25519"},
		ForwardingCurve25519KeyChain: forwarders,
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	k, err := recoverykey.NewRandom()
	require.NoError(t, err)

	data, err := k.PublicKey().Encrypt(context.Background(), roomKey(7, "fwd1", "fwd2"), true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), data.FirstMessageIndex)
	assert.Equal(t, int64(2), data.ForwardedCount)
	assert.True(t, data.IsVerified)

	got, err := k.DecryptSessionData(data.SessionData)
	require.NoError(t, err)
	assert.Equal(t, megolmExport(7), got.SessionKey)
	assert.Equal(t, "sender-curve25519", got.SenderKey)
	assert.Equal(t, []string{"fwd1", "fwd2"}, got.ForwardingCurve25519KeyChain)

	// Room and session IDs stay outside the ciphertext.
	pt, err := k.Decrypt(data.SessionData.Ephemeral, data.SessionData.MAC, data.SessionData.Ciphertext)
	require.NoError(t, err)
	assert.NotContains(t, string(pt), "!room:example.org")
}

func TestDecrypt_TamperedRecordFails(t *testing.T) {
	k, err := recoverykey.NewRandom()
	require.NoError(t, err)
	data, err := k.PublicKey().Encrypt(context.Background(), roomKey(0), false)
	require.NoError(t, err)

	flip := func(s string, i int) string {
		raw, err := crypto.DecodeBase64(s)
		require.NoError(t, err)
		raw[i%len(raw)] ^= 0x01
		return crypto.EncodeBase64(raw)
	}

	sd := data.SessionData
	for i := 0; i < crypto.BackupMACSize; i++ {
		_, err := k.DecryptSessionData(domaintypes.SessionData{Ephemeral: sd.Ephemeral, Ciphertext: sd.Ciphertext, MAC: flip(sd.MAC, i)})
		assert.ErrorIs(t, err, recoverykey.ErrDecryption, "mac byte %d", i)
	}
	for _, i := range []int{0, 15, 16, 1 << 20} {
		_, err := k.DecryptSessionData(domaintypes.SessionData{Ephemeral: sd.Ephemeral, Ciphertext: flip(sd.Ciphertext, i), MAC: sd.MAC})
		assert.ErrorIs(t, err, recoverykey.ErrDecryption, "ciphertext byte %d", i)
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	k, err := recoverykey.NewRandom()
	require.NoError(t, err)
	other, err := recoverykey.NewRandom()
	require.NoError(t, err)

	data, err := k.PublicKey().Encrypt(context.Background(), roomKey(0), false)
	require.NoError(t, err)
	_, err = other.DecryptSessionData(data.SessionData)
	assert.ErrorIs(t, err, recoverykey.ErrDecryption)
}

func TestEncrypt_RejectsBadSessionKey(t *testing.T) {
	k, err := recoverykey.NewRandom()
	require.NoError(t, err)

	bad := roomKey(0)
	bad.SessionKey = crypto.EncodeBase64([]byte{0x02, 0, 0, 0, 0})
	_, err = k.PublicKey().Encrypt(context.Background(), bad, false)
	assert.ErrorIs(t, err, recoverykey.ErrInvalidSessionKey)

	bad.SessionKey = "!!"
	_, err = k.PublicKey().Encrypt(context.Background(), bad, false)
	assert.ErrorIs(t, err, recoverykey.ErrInvalidSessionKey)
}

func TestEncrypt_CancelledContext(t *testing.T) {
	k, err := recoverykey.NewRandom()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = k.PublicKey().Encrypt(ctx, roomKey(0), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthData_RoundTrip(t *testing.T) {
	k, err := recoverykey.FromPassphrase("pw", "salt", 3)
	require.NoError(t, err)
	pub := k.PublicKey()
	pub.Signatures().AddSource("@alice:example.org", "ed25519:DEV", "garbled")

	raw, err := json.Marshal(pub.AuthData())
	require.NoError(t, err)

	var ad recoverykey.AuthData
	require.NoError(t, json.Unmarshal(raw, &ad))
	back, err := recoverykey.FromAuthData(ad)
	require.NoError(t, err)

	assert.Equal(t, pub.Base64(), back.Base64())
	info, ok := back.PassphraseInfo()
	require.True(t, ok)
	assert.Equal(t, domaintypes.PassphraseInfo{Salt: "salt", Iterations: 3}, info)

	m, ok := back.Signatures().Get("@alice:example.org", "ed25519:DEV")
	require.True(t, ok)
	src, ok := signatures.InvalidSource(m)
	require.True(t, ok)
	assert.Equal(t, "garbled", src)
}

func TestAuthData_OmitsEmptyFields(t *testing.T) {
	k, err := recoverykey.NewRandom()
	require.NoError(t, err)
	raw, err := json.Marshal(k.PublicKey().AuthData())
	require.NoError(t, err)
	assert.JSONEq(t, `{"public_key":"`+k.PublicKey().Base64()+`"}`, string(raw))
}
