package trust_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keybackup/internal/crypto"
	"keybackup/internal/domain"
	"keybackup/internal/protocol/signatures"
	"keybackup/internal/services/trust"
	"keybackup/internal/store"
)

const (
	pass = "local-pass"
	me   = domain.UserID("@alice:example.org")
)

type fixture struct {
	svc    *trust.Service
	acct   domain.Account
	other  domain.Account
	master domain.Account
}

func newAccount(t *testing.T, device domain.DeviceID) domain.Account {
	t.Helper()
	priv, pub, err := crypto.GenerateEd25519()
	require.NoError(t, err)
	return domain.Account{UserID: me, DeviceID: device, EdPub: pub, EdPriv: priv}
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	home := t.TempDir()
	accounts := store.NewAccountFileStore(home)

	f := fixture{
		acct:  newAccount(t, "LAPTOP"),
		other: newAccount(t, "PHONE"),
	}
	f.master = newAccount(t, "")
	// Master key signatures use the key itself as the key ID name.
	f.master.DeviceID = domain.DeviceID(f.master.EdPub.Base64())

	require.NoError(t, accounts.SaveAccount(pass, f.acct))
	f.svc = trust.New(accounts, store.NewTrustFileStore(home), nil)
	return f
}

func authData(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{"public_key": "cHVibGlj"})
	require.NoError(t, err)
	return b
}

func version(ad []byte) domain.BackupVersion {
	return domain.BackupVersion{Algorithm: domain.BackupAlgorithmMegolmV1, AuthData: ad, Version: "1"}
}

func TestVerifyBackup_SignedByThisDevice(t *testing.T) {
	f := newFixture(t)
	signed, err := f.svc.SignAuthData(pass, authData(t))
	require.NoError(t, err)

	v, err := f.svc.VerifyBackup(pass, version(signed))
	require.NoError(t, err)
	assert.Equal(t, signatures.ValidAndTrusted, v.DeviceState)
	assert.Equal(t, signatures.Missing, v.UserState)
	assert.True(t, v.Trusted())
}

func TestVerifyBackup_Unsigned(t *testing.T) {
	f := newFixture(t)
	v, err := f.svc.VerifyBackup(pass, version(authData(t)))
	require.NoError(t, err)
	assert.Equal(t, signatures.SignatureVerification{}, v)
	assert.False(t, v.Trusted())
}

func TestVerifyBackup_UnknownAlgorithm(t *testing.T) {
	f := newFixture(t)
	signed, err := f.svc.SignAuthData(pass, authData(t))
	require.NoError(t, err)

	v, err := f.svc.VerifyBackup(pass, domain.BackupVersion{Algorithm: "m.other", AuthData: signed})
	require.NoError(t, err)
	assert.Equal(t, signatures.Missing, v.DeviceState)
	assert.Equal(t, signatures.Missing, v.UserState)
}

func TestVerifyBackup_OtherDevice(t *testing.T) {
	f := newFixture(t)
	signed, err := signatures.SignObject(f.other, authData(t))
	require.NoError(t, err)

	// Unknown device: ignored.
	v, err := f.svc.VerifyBackup(pass, version(signed))
	require.NoError(t, err)
	assert.Equal(t, signatures.Missing, v.DeviceState)

	require.NoError(t, f.svc.AddDevice(domain.DeviceRecord{DeviceID: "PHONE", Ed25519: f.other.EdPub}))
	v, err = f.svc.VerifyBackup(pass, version(signed))
	require.NoError(t, err)
	assert.Equal(t, signatures.ValidButNotTrusted, v.DeviceState)
	assert.False(t, v.Trusted())

	require.NoError(t, f.svc.AddDevice(domain.DeviceRecord{DeviceID: "PHONE", Ed25519: f.other.EdPub, Trusted: true}))
	v, err = f.svc.VerifyBackup(pass, version(signed))
	require.NoError(t, err)
	assert.Equal(t, signatures.ValidAndTrusted, v.DeviceState)
	assert.True(t, v.Trusted())
}

func TestVerifyBackup_CrossSigning(t *testing.T) {
	f := newFixture(t)
	signed, err := signatures.SignObject(f.master, authData(t))
	require.NoError(t, err)

	require.NoError(t, f.svc.SetCrossSigningIdentity(domain.CrossSigningIdentity{MasterKey: f.master.EdPub}))
	v, err := f.svc.VerifyBackup(pass, version(signed))
	require.NoError(t, err)
	assert.Equal(t, signatures.ValidButNotTrusted, v.UserState)

	require.NoError(t, f.svc.SetCrossSigningIdentity(domain.CrossSigningIdentity{MasterKey: f.master.EdPub, Verified: true}))
	v, err = f.svc.VerifyBackup(pass, version(signed))
	require.NoError(t, err)
	assert.Equal(t, signatures.ValidAndTrusted, v.UserState)
	assert.True(t, v.Trusted())
}

func TestVerifyBackup_Tampered(t *testing.T) {
	f := newFixture(t)
	signed, err := f.svc.SignAuthData(pass, authData(t))
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(signed, &obj))
	obj["public_key"] = json.RawMessage(`"c3dhcHBlZA"`)
	tampered, err := json.Marshal(obj)
	require.NoError(t, err)

	v, err := f.svc.VerifyBackup(pass, version(tampered))
	require.NoError(t, err)
	assert.Equal(t, signatures.Invalid, v.DeviceState)
	assert.False(t, v.Trusted())
}

func TestVerifyBackup_WrongPassphrase(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.VerifyBackup("nope", version(authData(t)))
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestSignAuthData_RejectsNonJSON(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SignAuthData(pass, []byte("not json"))
	assert.ErrorIs(t, err, signatures.ErrNotObject)

	_, err = f.svc.SignAuthData(pass, []byte(`[1,2]`))
	assert.ErrorIs(t, err, signatures.ErrNotObject)
}
