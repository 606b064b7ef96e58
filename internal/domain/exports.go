package domain

import (
	interfaces "keybackup/internal/domain/interfaces"
	types "keybackup/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID               = types.UserID
	DeviceID             = types.DeviceID
	KeyID                = types.KeyID
	Fingerprint          = types.Fingerprint
	Account              = types.Account
	DeviceRecord         = types.DeviceRecord
	CrossSigningIdentity = types.CrossSigningIdentity
	PassphraseInfo       = types.PassphraseInfo
	SessionData          = types.SessionData
	KeyBackupData        = types.KeyBackupData
	ExportedRoomKey      = types.ExportedRoomKey
	BackedUpRoomKey      = types.BackedUpRoomKey
	BackupVersion        = types.BackupVersion
	RoomKeyBackup        = types.RoomKeyBackup
	KeysBackupRequest    = types.KeysBackupRequest
	RoomKeyCounts        = types.RoomKeyCounts
	BackupKeys           = types.BackupKeys
	X25519Public         = types.X25519Public
	X25519Private        = types.X25519Private
	Ed25519Public        = types.Ed25519Public
	Ed25519Private       = types.Ed25519Private
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	AccountService = interfaces.AccountService
	BackupService  = interfaces.BackupService
	TrustService   = interfaces.TrustService
	AccountStore   = interfaces.AccountStore
	BackupKeyStore = interfaces.BackupKeyStore
	TrustStore     = interfaces.TrustStore
)

// BackupAlgorithmMegolmV1 is the only backup algorithm supported.
const BackupAlgorithmMegolmV1 = types.BackupAlgorithmMegolmV1
