package signatures

import (
	"keybackup/internal/crypto"
	domaintypes "keybackup/internal/domain/types"
)

// Sign signs the signable form of obj with the account's device key.
func Sign(acct domaintypes.Account, obj []byte) (*Signatures, error) {
	msg, _, err := SignableJSON(obj)
	if err != nil {
		return nil, err
	}
	var sig Ed25519Signature
	copy(sig[:], crypto.SignEd25519(acct.EdPriv, msg))

	out := New()
	out.Add(acct.UserID, acct.SigningKeyID(), sig)
	return out, nil
}

// SignObject signs obj and returns it with the new signature attached.
func SignObject(acct domaintypes.Account, obj []byte) ([]byte, error) {
	sigs, err := Sign(acct, obj)
	if err != nil {
		return nil, err
	}
	return AttachSignatures(obj, sigs)
}
