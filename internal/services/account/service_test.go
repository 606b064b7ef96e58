package account_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keybackup/internal/domain"
	"keybackup/internal/services/account"
	"keybackup/internal/store"
)

const strongPass = "Correct-Horse-9"

func TestCreateAccount(t *testing.T) {
	svc := account.New(store.NewAccountFileStore(t.TempDir()), nil)

	acct, fp, err := svc.CreateAccount(strongPass, "@alice:example.org", "LAPTOP")
	require.NoError(t, err)
	assert.Len(t, fp.String(), 20)
	assert.Equal(t, "ed25519:LAPTOP", acct.SigningKeyID().String())

	loaded, err := svc.LoadAccount(strongPass)
	require.NoError(t, err)
	assert.Equal(t, acct, loaded)

	again, err := svc.FingerprintAccount(strongPass)
	require.NoError(t, err)
	assert.Equal(t, fp, again)
}

func TestCreateAccount_Validation(t *testing.T) {
	svc := account.New(store.NewAccountFileStore(t.TempDir()), nil)

	tests := []struct {
		name   string
		pass   string
		user   string
		device string
		want   error
	}{
		{"weak passphrase", "short", "@a:b", "D", account.ErrWeakPassphrase},
		{"no symbol", "Abcdefghijk1", "@a:b", "D", account.ErrWeakPassphrase},
		{"missing sigil", strongPass, "alice:example.org", "D", account.ErrInvalidUserID},
		{"missing server", strongPass, "@alice", "D", account.ErrInvalidUserID},
		{"empty local", strongPass, "@:example.org", "D", account.ErrInvalidUserID},
		{"empty device", strongPass, "@a:b", "", account.ErrInvalidDeviceID},
		{"space in device", strongPass, "@a:b", "MY DEVICE", account.ErrInvalidDeviceID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateAccount(tt.pass, domain.UserID(tt.user), domain.DeviceID(tt.device))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
