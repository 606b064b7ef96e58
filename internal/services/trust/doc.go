// Package trust records which of our own keys we trust and evaluates signed
// backup metadata against them.
package trust
