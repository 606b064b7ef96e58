package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keybackup/internal/domain"
)

func trustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Record own devices and the cross-signing identity",
	}
	cmd.AddCommand(trustDeviceCmd(), trustIdentityCmd())
	return cmd
}

func trustDeviceCmd() *cobra.Command {
	var trusted bool
	cmd := &cobra.Command{
		Use:   "device <device-id> <ed25519-key>",
		Short: "Record another device of our own user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pub domain.Ed25519Public
			if err := pub.UnmarshalText([]byte(args[1])); err != nil {
				return err
			}
			rec := domain.DeviceRecord{DeviceID: domain.DeviceID(args[0]), Ed25519: pub, Trusted: trusted}
			if err := wire.Trust.AddDevice(rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Device %s recorded (trusted: %t).\n", rec.DeviceID, trusted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&trusted, "trusted", false, "the device has been verified")
	return cmd
}

func trustIdentityCmd() *cobra.Command {
	var verified bool
	cmd := &cobra.Command{
		Use:   "identity <master-key>",
		Short: "Record our user's master cross-signing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pub domain.Ed25519Public
			if err := pub.UnmarshalText([]byte(args[0])); err != nil {
				return err
			}
			id := domain.CrossSigningIdentity{MasterKey: pub, Verified: verified}
			if err := wire.Trust.SetCrossSigningIdentity(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cross-signing key %s recorded (verified: %t).\n", id.KeyID(), verified)
			return nil
		},
	}
	cmd.Flags().BoolVar(&verified, "verified", false, "the identity has been verified")
	return cmd
}
