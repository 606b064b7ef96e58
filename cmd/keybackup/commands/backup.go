package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"keybackup/internal/domain"
	"keybackup/internal/protocol/shield"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypt, decrypt and verify room key backups",
	}
	cmd.AddCommand(
		backupAuthDataCmd(),
		backupEncryptCmd(),
		backupDecryptCmd(),
		backupVerifyCmd(),
	)
	return cmd
}

func backupAuthDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth-data",
		Short: "Print the signed backup version body for the stored key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			key, version, err := wire.Backup.LoadRecoveryKey(passphrase)
			if err != nil {
				return err
			}
			pub := key.PublicKey()
			key.Close()

			raw, err := json.Marshal(pub.AuthData())
			if err != nil {
				return err
			}
			signed, err := wire.Trust.SignAuthData(passphrase, raw)
			if err != nil {
				return err
			}
			return printJSON(cmd, domain.BackupVersion{
				Algorithm: pub.Algorithm(),
				AuthData:  signed,
				Version:   version,
			})
		},
	}
}

func backupEncryptCmd() *cobra.Command {
	var (
		in       string
		verified bool
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt exported room keys (JSON array) into an upload body",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			var keys []domain.ExportedRoomKey
			if err := decodeInput(cmd, in, &keys); err != nil {
				return err
			}
			req, counts, err := wire.Backup.EncryptRoomKeys(cmd.Context(), passphrase, keys, verified)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "backed up %d of %d room keys\n", counts.BackedUp, counts.Total)
			return printJSON(cmd, req)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "file with exported room keys (default stdin)")
	cmd.Flags().BoolVar(&verified, "verified", false, "mark the keys as received from verified devices")
	return cmd
}

func backupDecryptCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt one backed up room key (KeyBackupData JSON)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			var data domain.KeyBackupData
			if err := decodeInput(cmd, in, &data); err != nil {
				return err
			}
			key, err := wire.Backup.DecryptRoomKey(passphrase, data)
			if err != nil {
				return err
			}
			return printJSON(cmd, key)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "file with the backed up key (default stdin)")
	return cmd
}

type verifyResult struct {
	DeviceState string  `json:"device_state"`
	UserState   string  `json:"user_state"`
	Trusted     bool    `json:"trusted"`
	Shield      string  `json:"shield"`
	Code        string  `json:"shield_code"`
	Message     *string `json:"shield_message,omitempty"`
}

func backupVerifyCmd() *cobra.Command {
	var (
		in     string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the signatures on a backup version (BackupVersion JSON)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			var version domain.BackupVersion
			if err := decodeInput(cmd, in, &version); err != nil {
				return err
			}
			v, err := wire.Trust.VerifyBackup(passphrase, version)
			if err != nil {
				return err
			}
			s := shield.FromSignatures(v).Shield(strict)
			return printJSON(cmd, verifyResult{
				DeviceState: v.DeviceState.String(),
				UserState:   v.UserState.String(),
				Trusted:     v.Trusted(),
				Shield:      s.Color.String(),
				Code:        s.Code.String(),
				Message:     s.Message,
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "file with the backup version (default stdin)")
	cmd.Flags().BoolVar(&strict, "strict", true, "flag unverified identities")
	return cmd
}
