// Package commands defines the keybackup CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init                        Create the local device account
//   - fingerprint                 Print the device key fingerprint
//   - recovery-key create         Create a random or passphrase recovery key
//   - recovery-key restore        Restore a recovery key from text or passphrase
//   - recovery-key show           Print the stored recovery key
//   - recovery-key forget         Delete the stored recovery key
//   - backup auth-data            Print signed auth_data for a new backup version
//   - backup encrypt              Encrypt exported room keys for upload
//   - backup decrypt              Decrypt one backed up room key
//   - backup verify               Check the signatures on a backup version
//   - trust device | identity     Record own devices and cross-signing key
//   - shield                      Show the shield for a code or verification level
//
// # Implementation
//
// The root command loads config.yaml from the home directory and builds the
// dependency graph (logger, stores, services) before any subcommand runs.
// JSON input is read from --in or stdin; JSON output goes to stdout.
package commands
