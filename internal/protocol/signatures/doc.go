// Package signatures holds Ed25519 signatures over JSON objects and decides
// how far they can be trusted.
//
// A Signatures collection maps signer → key ID → MaybeSignature. Entries that
// cannot be decoded as Ed25519 signatures are kept as UndecodableSignature
// values carrying their original text, so "garbled" stays distinguishable
// from "absent".
//
// Verify collapses a collection into a SignatureVerification: one state for
// our devices, one for our cross-signing identity. Trusted reports whether at
// least one signer is itself trusted.
//
// Concurrency: Signatures is NOT safe for concurrent use.
package signatures
