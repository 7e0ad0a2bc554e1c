package auth

import "strconv"

// HashPassword is a deliberately toy 32-bit checksum, kept for compatibility
// with the existing customer records. It is NOT cryptographic and offers no
// protection beyond not storing the plain text.
func HashPassword(password string) string {
	var hash int32
	for _, r := range password {
		hash = (hash<<5 - hash) + int32(r)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 16)
}
