package app

import (
	"io"
	"log/slog"
	"os"

	"keybackup/internal/domain"
	accountsvc "keybackup/internal/services/account"
	backupsvc "keybackup/internal/services/backup"
	trustsvc "keybackup/internal/services/trust"
	"keybackup/internal/store"
)

// Wire bundles all stores and services for the CLI.
type Wire struct {
	Config   Config
	Log      *slog.Logger
	Accounts domain.AccountService
	Backup   domain.BackupService
	Trust    domain.TrustService
}

// NewWire constructs the dependency graph from cfg. Logs go to logOut; nil
// means stderr.
func NewWire(cfg Config, logOut io.Writer) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	log, err := NewLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	// File-based stores
	accountStore := store.NewAccountFileStore(cfg.Home)
	backupKeyStore := store.NewBackupKeyFileStore(cfg.Home)
	trustStore := store.NewTrustFileStore(cfg.Home)

	// High-level services
	return &Wire{
		Config:   cfg,
		Log:      log,
		Accounts: accountsvc.New(accountStore, log.With("component", "account")),
		Backup:   backupsvc.New(backupKeyStore, cfg.Iterations, log.With("component", "backup")),
		Trust:    trustsvc.New(accountStore, trustStore, log.With("component", "trust")),
	}, nil
}
