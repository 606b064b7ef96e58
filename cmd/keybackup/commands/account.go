package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"keybackup/internal/domain"
)

func initCmd() *cobra.Command {
	var user, device string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the device account and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			cfg := wire.Config
			if user != "" {
				cfg.UserID = domain.UserID(user)
			}
			if device != "" {
				cfg.DeviceID = domain.DeviceID(device)
			}
			if cfg.UserID == "" || cfg.DeviceID == "" {
				return errors.New("--user and --device are required unless set in config.yaml")
			}

			acct, fp, err := wire.Accounts.CreateAccount(passphrase, cfg.UserID, cfg.DeviceID)
			if err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created.\nKey ID: %s\nFingerprint: %s\n", acct.SigningKeyID(), fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user ID, e.g. @alice:example.org")
	cmd.Flags().StringVar(&device, "device", "", "device ID")
	return cmd
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the device key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			fp, err := wire.Accounts.FingerprintAccount(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
			return nil
		},
	}
}
