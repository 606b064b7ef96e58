// Package shield projects an authenticity verdict onto the three-level
// indicator shown next to a message or backup: Red, Grey or None.
//
// The mapping is pure. Every Code other than CodeNone has exactly one color
// and a message; CodeNone has color None and no message. Strict and lax
// modes only differ in which Code a VerificationState selects.
package shield
