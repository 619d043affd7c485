// Package util holds small byte-level helpers shared across the core
// packages, mirroring the teacher's own util package convention (a
// grab-bag of BouncyCastle-style Arrays/Pack helpers) trimmed down to
// the one helper this module's packages actually call: a
// constant-time comparison, used by gcm's tag verification.
package util

import "crypto/subtle"

// ConstantTimeCompare compares two byte slices in constant time.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
