package entity

import (
	"crypto/sha1"
	"fmt"
)

// ShortHash returns the first 8 hex characters of the SHA-1 digest of value.
// Used by the output path resolver to disambiguate flattened basenames.
func ShortHash(value string) string {
	h := sha1.New()
	h.Write([]byte(value))
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}
