package app_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keybackup/internal/app"
	"keybackup/internal/crypto"
	"keybackup/internal/domain"
	"keybackup/internal/protocol/recoverykey"
)

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := app.LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, app.DefaultConfig(home), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	yml := `
log:
  level: debug
  format: json
account:
  userId: "@alice:example.org"
  deviceId: LAPTOP
backup:
  iterations: 1000
`
	require.NoError(t, os.WriteFile(filepath.Join(home, app.ConfigFilename), []byte(yml), 0o600))

	cfg, err := app.LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, domain.UserID("@alice:example.org"), cfg.UserID)
	assert.Equal(t, domain.DeviceID("LAPTOP"), cfg.DeviceID)
	assert.Equal(t, 1000, cfg.Iterations)

	t.Setenv("KEYBACKUP_ITERATIONS", "42")
	t.Setenv("KEYBACKUP_LOG_LEVEL", "warn")
	cfg, err = app.LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Iterations)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Setenv("KEYBACKUP_ITERATIONS", "many")
	_, err = app.LoadConfig(home)
	assert.Error(t, err)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	cfg := app.DefaultConfig(home)
	cfg.UserID = "@bob:example.org"
	cfg.DeviceID = "PHONE"
	cfg.Iterations = 5
	require.NoError(t, cfg.Save())

	got, err := app.LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*app.Config)
	}{
		{"no home", func(c *app.Config) { c.Home = "" }},
		{"negative iterations", func(c *app.Config) { c.Iterations = -1 }},
		{"bad level", func(c *app.Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *app.Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := app.DefaultConfig("/tmp/x")
			tt.mod(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger_Redacts(t *testing.T) {
	var buf bytes.Buffer
	cfg := app.DefaultConfig(t.TempDir())
	cfg.LogFormat = "json"
	log, err := app.NewLogger(cfg, &buf)
	require.NoError(t, err)

	log.Info("hello", "passphrase", "hunter2", "count", 3)
	log.Debug("hidden")
	assert.NotContains(t, buf.String(), "hunter2")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"count":3`)
}

func TestWire_EndToEnd(t *testing.T) {
	const pass = "Local-Passphrase-1"
	var logs bytes.Buffer
	cfg := app.DefaultConfig(t.TempDir())
	cfg.Iterations = 10
	w, err := app.NewWire(cfg, &logs)
	require.NoError(t, err)

	_, _, err = w.Accounts.CreateAccount(pass, "@alice:example.org", "LAPTOP")
	require.NoError(t, err)

	key, err := w.Backup.CreateRecoveryKey(pass, "backup words", "1")
	require.NoError(t, err)

	ad, err := json.Marshal(key.PublicKey().AuthData())
	require.NoError(t, err)
	signed, err := w.Trust.SignAuthData(pass, ad)
	require.NoError(t, err)

	v, err := w.Trust.VerifyBackup(pass, domain.BackupVersion{
		Algorithm: domain.BackupAlgorithmMegolmV1,
		AuthData:  signed,
		Version:   "1",
	})
	require.NoError(t, err)
	assert.True(t, v.Trusted())

	var parsed recoverykey.AuthData
	require.NoError(t, json.Unmarshal(signed, &parsed))
	pub, err := recoverykey.FromAuthData(parsed)
	require.NoError(t, err)
	assert.Equal(t, 1, pub.Signatures().Count())

	raw := make([]byte, 165)
	raw[0] = 1
	binary.BigEndian.PutUint32(raw[1:5], 3)
	req, counts, err := w.Backup.EncryptRoomKeys(context.Background(), pass, []domain.ExportedRoomKey{{
		RoomID:     "!r:example.org",
		SessionID:  "sess",
		SessionKey: crypto.EncodeBase64(raw),
	}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.BackedUp)

	got, err := w.Backup.DecryptRoomKey(pass, req.Rooms["!r:example.org"].Sessions["sess"])
	require.NoError(t, err)
	assert.Equal(t, crypto.EncodeBase64(raw), got.SessionKey)

	assert.NotContains(t, logs.String(), pass)
	assert.NotContains(t, logs.String(), "@alice:example.org")
}
