// Package account manages creation, encryption and loading of the local
// device account.
//
// It enforces passphrase policy, generates the device's Ed25519 signing key,
// and persists it via the domain.AccountStore.
package account
