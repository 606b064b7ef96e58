package types

// Account is the local device: who we are and the key we sign with.
type Account struct {
	UserID   UserID         `json:"user_id"`
	DeviceID DeviceID       `json:"device_id"`
	EdPub    Ed25519Public  `json:"ed25519_public"`
	EdPriv   Ed25519Private `json:"ed25519_private"`
}

// SigningKeyID returns "ed25519:<device id>".
func (a Account) SigningKeyID() KeyID { return NewKeyID(AlgorithmEd25519, a.DeviceID.String()) }

// DeviceRecord is another device of our own user that we know the key of.
type DeviceRecord struct {
	DeviceID DeviceID      `json:"device_id"`
	Ed25519  Ed25519Public `json:"ed25519"`
	Trusted  bool          `json:"trusted"`
}

// CrossSigningIdentity is our user's master cross-signing key and whether we
// have verified it.
type CrossSigningIdentity struct {
	MasterKey Ed25519Public `json:"master_key"`
	Verified  bool          `json:"verified"`
}

// KeyID returns "ed25519:<unpadded base64 master key>".
func (c CrossSigningIdentity) KeyID() KeyID {
	return NewKeyID(AlgorithmEd25519, c.MasterKey.Base64())
}
