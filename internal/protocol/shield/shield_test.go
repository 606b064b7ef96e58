package shield_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keybackup/internal/protocol/shield"
	"keybackup/internal/protocol/signatures"
)

func TestFor_EveryCodeHasOneColor(t *testing.T) {
	for _, code := range shield.Codes() {
		s := shield.For(code)
		assert.Equal(t, code, s.Code)
		if code == shield.CodeNone {
			assert.Equal(t, shield.ColorNone, s.Color)
			assert.Nil(t, s.Message)
			continue
		}
		assert.NotEqual(t, shield.ColorNone, s.Color, code.String())
		require.NotNil(t, s.Message, code.String())
		assert.NotEmpty(t, *s.Message)
		assert.Equal(t, s, shield.For(code), "mapping must be stable")
	}
}

func TestFor_Colors(t *testing.T) {
	tests := []struct {
		code shield.Code
		want shield.Color
	}{
		{shield.CodeAuthenticityNotGuaranteed, shield.ColorGrey},
		{shield.CodeUnknownDevice, shield.ColorRed},
		{shield.CodeUnsignedDevice, shield.ColorRed},
		{shield.CodeUnverifiedIdentity, shield.ColorRed},
		{shield.CodeSentInClear, shield.ColorRed},
		{shield.CodeVerificationViolation, shield.ColorRed},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, shield.For(tt.code).Color)
		})
	}
}

func TestFor_UnknownCodeIsNone(t *testing.T) {
	s := shield.For(shield.Code(99))
	assert.Equal(t, shield.ColorNone, s.Color)
	assert.Equal(t, shield.CodeNone, s.Code)
	assert.Nil(t, s.Message)
}

func TestVerificationState_StrictAndLax(t *testing.T) {
	tests := []struct {
		name   string
		state  shield.VerificationState
		strict shield.Code
		lax    shield.Code
	}{
		{"verified", shield.Verified, shield.CodeNone, shield.CodeNone},
		{"unverified identity", shield.Unverified(shield.LevelUnverifiedIdentity), shield.CodeUnverifiedIdentity, shield.CodeNone},
		{"violation", shield.Unverified(shield.LevelVerificationViolation), shield.CodeVerificationViolation, shield.CodeVerificationViolation},
		{"unsigned device", shield.Unverified(shield.LevelUnsignedDevice), shield.CodeUnsignedDevice, shield.CodeUnsignedDevice},
		{"missing device", shield.Unverified(shield.LevelMissingDevice), shield.CodeUnknownDevice, shield.CodeUnknownDevice},
		{"insecure source", shield.Unverified(shield.LevelInsecureSource), shield.CodeAuthenticityNotGuaranteed, shield.CodeAuthenticityNotGuaranteed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strict, tt.state.Shield(true).Code)
			assert.Equal(t, tt.lax, tt.state.Shield(false).Code)
		})
	}
	assert.True(t, shield.Verified.IsVerified())
	assert.False(t, shield.Unverified(shield.LevelMissingDevice).IsVerified())
}

func TestFromSignatures(t *testing.T) {
	v := func(d, u signatures.SignatureState) signatures.SignatureVerification {
		return signatures.SignatureVerification{DeviceState: d, UserState: u}
	}
	assert.True(t, shield.FromSignatures(v(signatures.ValidAndTrusted, signatures.Missing)).IsVerified())
	assert.True(t, shield.FromSignatures(v(signatures.Invalid, signatures.ValidAndTrusted)).IsVerified())
	assert.Equal(t, shield.Unverified(shield.LevelUnverifiedIdentity),
		shield.FromSignatures(v(signatures.ValidButNotTrusted, signatures.Missing)))
	assert.Equal(t, shield.Unverified(shield.LevelVerificationViolation),
		shield.FromSignatures(v(signatures.Invalid, signatures.Missing)))
	assert.Equal(t, shield.Unverified(shield.LevelInsecureSource),
		shield.FromSignatures(v(signatures.Missing, signatures.Missing)))
}

func TestParseCode(t *testing.T) {
	for _, code := range shield.Codes() {
		got, err := shield.ParseCode(code.String())
		require.NoError(t, err)
		assert.Equal(t, code, got)
	}
	_, err := shield.ParseCode("purple")
	assert.Error(t, err)
	assert.Equal(t, shield.ColorRed, shield.ForUnencrypted().Color)
}
