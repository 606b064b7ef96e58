package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"keybackup/internal/domain"
	"keybackup/internal/protocol/recoverykey"
)

func recoveryKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recovery-key",
		Short: "Create, restore and inspect the backup recovery key",
	}
	cmd.AddCommand(
		recoveryKeyCreateCmd(),
		recoveryKeyRestoreCmd(),
		recoveryKeyShowCmd(),
		recoveryKeyForgetCmd(),
	)
	return cmd
}

func printRecoveryKey(cmd *cobra.Command, key *recoverykey.RecoveryKey, version string, form recoverykey.Form) {
	out := cmd.OutOrStdout()
	pub := key.PublicKey()
	fmt.Fprintf(out, "Recovery key: %s\n", key.Encode(form))
	fmt.Fprintf(out, "Backup version: %s\n", version)
	fmt.Fprintf(out, "Public key: %s\n", pub.Base64())
	fmt.Fprintf(out, "Fingerprint: %s\n", pub.Fingerprint())
	if info, ok := key.PassphraseInfo(); ok {
		fmt.Fprintf(out, "Salt: %s\nIterations: %d\n", info.Salt, info.Iterations)
	}
}

func recoveryKeyCreateCmd() *cobra.Command {
	var version, fromPassphrase string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new recovery key for a backup version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			key, err := wire.Backup.CreateRecoveryKey(passphrase, fromPassphrase, version)
			if err != nil {
				return err
			}
			defer key.Close()
			printRecoveryKey(cmd, key, version, recoverykey.Checksummed)
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "backup version the key belongs to")
	cmd.Flags().StringVar(&fromPassphrase, "from-passphrase", "", "derive the key from this passphrase instead of at random")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func recoveryKeyRestoreCmd() *cobra.Command {
	var (
		version, formName  string
		recoveryPass, salt string
		iterations         int
	)
	cmd := &cobra.Command{
		Use:   "restore [key]",
		Short: "Restore a recovery key from its text form or its passphrase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}

			var (
				key *recoverykey.RecoveryKey
				err error
			)
			switch {
			case len(args) == 1 && recoveryPass == "":
				form, ferr := recoverykey.ParseForm(formName)
				if ferr != nil {
					return ferr
				}
				key, err = wire.Backup.RestoreRecoveryKey(passphrase, args[0], form, version)
			case len(args) == 0 && recoveryPass != "":
				if salt == "" {
					return errors.New("--salt is required with --recovery-passphrase")
				}
				info := domain.PassphraseInfo{Salt: salt, Iterations: iterations}
				key, err = wire.Backup.RestoreFromPassphrase(passphrase, recoveryPass, info, version)
			default:
				return errors.New("give either a key argument or --recovery-passphrase")
			}
			if err != nil {
				return err
			}
			defer key.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Recovery key restored.\nPublic key: %s\n", key.PublicKey().Base64())
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "backup version the key belongs to")
	cmd.Flags().StringVar(&formName, "form", "base58", "key encoding: base58 or base64")
	cmd.Flags().StringVar(&recoveryPass, "recovery-passphrase", "", "passphrase the key was derived from")
	cmd.Flags().StringVar(&salt, "salt", "", "private_key_salt from the backup auth_data")
	cmd.Flags().IntVar(&iterations, "iterations", recoverykey.DefaultIterations, "private_key_iterations from the backup auth_data")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func recoveryKeyShowCmd() *cobra.Command {
	var formName string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored recovery key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			form, err := recoverykey.ParseForm(formName)
			if err != nil {
				return err
			}
			key, version, err := wire.Backup.LoadRecoveryKey(passphrase)
			if err != nil {
				return err
			}
			defer key.Close()
			printRecoveryKey(cmd, key, version, form)
			return nil
		},
	}
	cmd.Flags().StringVar(&formName, "form", "base58", "key encoding: base58 or base64")
	return cmd
}

func recoveryKeyForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Delete the stored recovery key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Backup.ForgetRecoveryKey(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recovery key deleted.")
			return nil
		},
	}
}
