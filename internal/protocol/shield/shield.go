package shield

import (
	"fmt"
	"strings"

	"keybackup/internal/protocol/signatures"
)

// Color is the visual class of a shield.
type Color int

const (
	ColorNone Color = iota
	ColorGrey
	ColorRed
)

func (c Color) String() string {
	switch c {
	case ColorNone:
		return "none"
	case ColorGrey:
		return "grey"
	case ColorRed:
		return "red"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Code explains why a shield is shown.
type Code int

const (
	CodeNone Code = iota
	// CodeAuthenticityNotGuaranteed: the key came from an insecure source,
	// such as a backup or a key forwarded by another device.
	CodeAuthenticityNotGuaranteed
	CodeUnknownDevice
	CodeUnsignedDevice
	CodeUnverifiedIdentity
	CodeSentInClear
	// CodeVerificationViolation: the sender was verified before but is not
	// any more.
	CodeVerificationViolation
)

var codeNames = map[Code]string{
	CodeNone:                      "none",
	CodeAuthenticityNotGuaranteed: "authenticity_not_guaranteed",
	CodeUnknownDevice:             "unknown_device",
	CodeUnsignedDevice:            "unsigned_device",
	CodeUnverifiedIdentity:        "unverified_identity",
	CodeSentInClear:               "sent_in_clear",
	CodeVerificationViolation:     "verification_violation",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// ParseCode is the inverse of Code.String.
func ParseCode(s string) (Code, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range codeNames {
		if name == s {
			return c, nil
		}
	}
	return CodeNone, fmt.Errorf("unknown shield code %q", s)
}

// State is a shield ready for display. Message is nil for ColorNone.
type State struct {
	Color   Color
	Code    Code
	Message *string
}

type entry struct {
	color   Color
	message string
}

var table = map[Code]entry{
	CodeAuthenticityNotGuaranteed: {ColorGrey, "The authenticity of this encrypted message can't be guaranteed on this device."},
	CodeUnknownDevice:             {ColorRed, "Encrypted by an unknown or deleted device."},
	CodeUnsignedDevice:            {ColorRed, "Encrypted by a device not verified by its owner."},
	CodeUnverifiedIdentity:        {ColorRed, "Encrypted by an unverified user."},
	CodeSentInClear:               {ColorRed, "Not encrypted."},
	CodeVerificationViolation:     {ColorRed, "Encrypted by a previously-verified user who is no longer verified."},
}

// For returns the shield for code. Unknown codes yield the empty shield.
func For(code Code) State {
	e, ok := table[code]
	if !ok {
		return State{Color: ColorNone, Code: CodeNone}
	}
	msg := e.message
	return State{Color: e.color, Code: code, Message: &msg}
}

// Codes lists every code, CodeNone first.
func Codes() []Code {
	return []Code{
		CodeNone,
		CodeAuthenticityNotGuaranteed,
		CodeUnknownDevice,
		CodeUnsignedDevice,
		CodeUnverifiedIdentity,
		CodeSentInClear,
		CodeVerificationViolation,
	}
}

func (s State) String() string {
	if s.Message == nil {
		return s.Color.String()
	}
	return fmt.Sprintf("%s (%s): %s", s.Color, s.Code, *s.Message)
}

// Level says why a sender is not verified.
type Level int

const (
	// LevelUnverifiedIdentity: the sender's identity is signed but we have
	// not verified it.
	LevelUnverifiedIdentity Level = iota + 1
	LevelVerificationViolation
	// LevelUnsignedDevice: the device is not signed by its owner.
	LevelUnsignedDevice
	// LevelMissingDevice: the sending device is unknown or deleted.
	LevelMissingDevice
	// LevelInsecureSource: the key was not received from the sender directly.
	LevelInsecureSource
)

// VerificationState is the authenticity verdict for one event or object.
// The zero value is "verified".
type VerificationState struct {
	Level Level
}

// Verified is the state of an authenticated sender.
var Verified = VerificationState{}

// Unverified returns the state for a sender that failed at level.
func Unverified(level Level) VerificationState { return VerificationState{Level: level} }

// IsVerified reports whether no problem was found.
func (v VerificationState) IsVerified() bool { return v.Level == 0 }

// Shield projects v onto a shield. In lax mode an unverified but otherwise
// consistent identity is not flagged.
func (v VerificationState) Shield(strict bool) State {
	switch v.Level {
	case LevelUnverifiedIdentity:
		if !strict {
			return For(CodeNone)
		}
		return For(CodeUnverifiedIdentity)
	case LevelVerificationViolation:
		return For(CodeVerificationViolation)
	case LevelUnsignedDevice:
		return For(CodeUnsignedDevice)
	case LevelMissingDevice:
		return For(CodeUnknownDevice)
	case LevelInsecureSource:
		return For(CodeAuthenticityNotGuaranteed)
	default:
		return For(CodeNone)
	}
}

// FromSignatures turns a backup signature verdict into a verification state.
// A trusted verdict is verified; a valid but untrusted signature counts as an
// unverified identity; anything else cannot be vouched for.
func FromSignatures(v signatures.SignatureVerification) VerificationState {
	if v.Trusted() {
		return Verified
	}
	if v.DeviceState == signatures.ValidButNotTrusted || v.UserState == signatures.ValidButNotTrusted {
		return Unverified(LevelUnverifiedIdentity)
	}
	if v.DeviceState == signatures.Invalid || v.UserState == signatures.Invalid {
		return Unverified(LevelVerificationViolation)
	}
	return Unverified(LevelInsecureSource)
}

// ForUnencrypted is the shield for content that was sent without encryption.
func ForUnencrypted() State { return For(CodeSentInClear) }
