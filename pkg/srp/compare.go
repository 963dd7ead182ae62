package srp

import "crypto/subtle"

// ConstantTimeEqual reports whether a and b are equal. Slices of different
// length are unequal; for equal lengths every byte is inspected regardless of
// where the first difference is.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
