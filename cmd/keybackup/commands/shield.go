package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keybackup/internal/protocol/shield"
)

var levelNames = map[string]shield.Level{
	"unverified-identity":    shield.LevelUnverifiedIdentity,
	"verification-violation": shield.LevelVerificationViolation,
	"unsigned-device":        shield.LevelUnsignedDevice,
	"missing-device":         shield.LevelMissingDevice,
	"insecure-source":        shield.LevelInsecureSource,
}

func shieldCmd() *cobra.Command {
	var (
		level  string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "shield [code...]",
		Short: "Show the shield for codes, or for a verification level with --level",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if level != "" {
				state := shield.Verified
				if level != "verified" {
					l, ok := levelNames[level]
					if !ok {
						return fmt.Errorf("unknown verification level %q", level)
					}
					state = shield.Unverified(l)
				}
				fmt.Fprintln(out, state.Shield(strict))
				return nil
			}

			codes := shield.Codes()
			if len(args) > 0 {
				codes = codes[:0]
				for _, a := range args {
					c, err := shield.ParseCode(a)
					if err != nil {
						return err
					}
					codes = append(codes, c)
				}
			}
			for _, c := range codes {
				fmt.Fprintf(out, "%-28s %s\n", c, shield.For(c))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "verification level (verified, unverified-identity, ...)")
	cmd.Flags().BoolVar(&strict, "strict", true, "flag unverified identities")
	return cmd
}
