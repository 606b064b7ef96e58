package types

import "encoding/json"

// BackupAlgorithmMegolmV1 is the only backup algorithm supported.
const BackupAlgorithmMegolmV1 = "m.megolm_backup.v1.curve25519-aes-sha2"

// PassphraseInfo records how a recovery key was derived from a passphrase.
type PassphraseInfo struct {
	Salt       string `json:"private_key_salt"`
	Iterations int    `json:"private_key_iterations"`
}

// SessionData is the encrypted part of a backed up room key.
type SessionData struct {
	// Unpadded base64 public half of the ephemeral key.
	Ephemeral string `json:"ephemeral"`
	// AES-CBC-256/PKCS#7 ciphertext, unpadded base64.
	Ciphertext string `json:"ciphertext"`
	// First 8 bytes of the HMAC-SHA-256, unpadded base64.
	MAC string `json:"mac"`
}

// KeyBackupData is one backed up room key as uploaded to the server.
type KeyBackupData struct {
	FirstMessageIndex int64       `json:"first_message_index"`
	ForwardedCount    int64       `json:"forwarded_count"`
	IsVerified        bool        `json:"is_verified"`
	SessionData       SessionData `json:"session_data"`
}

// ExportedRoomKey is a single exported inbound group session.
type ExportedRoomKey struct {
	Algorithm                    string            `json:"algorithm"`
	RoomID                       string            `json:"room_id"`
	SenderKey                    string            `json:"sender_key"`
	SessionID                    string            `json:"session_id"`
	SessionKey                   string            `json:"session_key"`
	SenderClaimedKeys            map[string]string `json:"sender_claimed_keys"`
	ForwardingCurve25519KeyChain []string          `json:"forwarding_curve25519_key_chain"`
}

// BackedUpRoomKey is the plaintext stored inside SessionData. Room and session
// IDs travel outside the ciphertext.
type BackedUpRoomKey struct {
	Algorithm                    string            `json:"algorithm"`
	SenderKey                    string            `json:"sender_key"`
	SessionKey                   string            `json:"session_key"`
	SenderClaimedKeys            map[string]string `json:"sender_claimed_keys"`
	ForwardingCurve25519KeyChain []string          `json:"forwarding_curve25519_key_chain"`
}

// BackupVersion is the server's description of a backup, including the signed
// auth_data.
type BackupVersion struct {
	Algorithm string          `json:"algorithm"`
	AuthData  json.RawMessage `json:"auth_data"`
	Version   string          `json:"version,omitempty"`
}

// RoomKeyBackup groups backed up sessions of one room.
type RoomKeyBackup struct {
	Sessions map[string]KeyBackupData `json:"sessions"`
}

// KeysBackupRequest is the body of a room key upload.
type KeysBackupRequest struct {
	Rooms map[string]RoomKeyBackup `json:"rooms"`
}

// RoomKeyCounts reports how many room keys we hold and how many are backed up.
type RoomKeyCounts struct {
	Total    int `json:"total"`
	BackedUp int `json:"backed_up"`
}

// BackupKeys is what the local store remembers about the active backup.
// Empty strings mean "not stored".
type BackupKeys struct {
	DecryptionKeyBase64 string `json:"decryption_key_base64,omitempty"`
	BackupVersion       string `json:"backup_version,omitempty"`
}
