package signatures

import (
	"keybackup/internal/crypto"
	domaintypes "keybackup/internal/domain/types"
)

// SignatureState is the outcome of checking one kind of signer. States are
// ordered by increasing trust.
type SignatureState int

const (
	// Missing means no signature from this kind of signer was found.
	Missing SignatureState = iota
	// Invalid means a signature was present but did not verify.
	Invalid
	// ValidButNotTrusted means the signature verifies but its signer is not
	// trusted.
	ValidButNotTrusted
	// ValidAndTrusted means the signature verifies and its signer is trusted.
	ValidAndTrusted
)

func (s SignatureState) String() string {
	switch s {
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	case ValidButNotTrusted:
		return "valid_but_not_trusted"
	case ValidAndTrusted:
		return "valid_and_trusted"
	default:
		return "unknown"
	}
}

// SignatureVerification is the verdict over one signed object.
type SignatureVerification struct {
	// DeviceState is the best state among signatures from our own devices.
	DeviceState SignatureState `json:"device_state"`
	// UserState is the state of the signature from our cross-signing identity.
	UserState SignatureState `json:"user_state"`
}

// Trusted reports whether the object carries at least one valid signature
// from a signer we currently trust.
func (v SignatureVerification) Trusted() bool {
	return v.DeviceState == ValidAndTrusted || v.UserState == ValidAndTrusted
}

// TrustContext is what we know about our own identity when verifying.
type TrustContext struct {
	UserID domaintypes.UserID
	// Device is the current device. Its key is always trusted.
	Device domaintypes.DeviceRecord
	// OtherDevices are further devices of UserID whose keys we know.
	OtherDevices []domaintypes.DeviceRecord
	// CrossSigning is nil if our user has no cross-signing identity.
	CrossSigning *domaintypes.CrossSigningIdentity
}

// Verify checks sigs over the canonical message against tc. Signatures from
// other users and from key IDs we do not know are ignored.
func Verify(message []byte, sigs *Signatures, tc TrustContext) SignatureVerification {
	own, _ := sigs.GetAll(tc.UserID)
	return SignatureVerification{
		DeviceState: deviceState(message, own, tc),
		UserState:   userState(message, own, tc),
	}
}

// VerifyJSON strips "signatures" and "unsigned" from obj, canonicalizes it
// and runs Verify.
func VerifyJSON(obj []byte, tc TrustContext) (SignatureVerification, error) {
	msg, sigs, err := SignableJSON(obj)
	if err != nil {
		return SignatureVerification{}, err
	}
	return Verify(msg, sigs, tc), nil
}

func deviceState(
	message []byte,
	own map[domaintypes.KeyID]MaybeSignature,
	tc TrustContext,
) SignatureState {
	best := Missing
	this := tc.Device
	this.Trusted = true
	for _, dev := range append([]domaintypes.DeviceRecord{this}, tc.OtherDevices...) {
		if dev.DeviceID == "" {
			continue
		}
		keyID := domaintypes.NewKeyID(domaintypes.AlgorithmEd25519, dev.DeviceID.String())
		st := check(message, own[keyID], dev.Ed25519, dev.Trusted)
		if st > best {
			best = st
		}
	}
	return best
}

func userState(
	message []byte,
	own map[domaintypes.KeyID]MaybeSignature,
	tc TrustContext,
) SignatureState {
	if tc.CrossSigning == nil {
		return Missing
	}
	id := tc.CrossSigning
	return check(message, own[id.KeyID()], id.MasterKey, id.Verified)
}

func check(message []byte, m MaybeSignature, pub domaintypes.Ed25519Public, trusted bool) SignatureState {
	if m == nil {
		return Missing
	}
	sig, ok := AsEd25519(m)
	if !ok || !crypto.VerifyEd25519(pub, message, sig[:]) {
		return Invalid
	}
	if trusted {
		return ValidAndTrusted
	}
	return ValidButNotTrusted
}
