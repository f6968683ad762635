package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestHex returns the hex SHA-256 of the parts, each length-prefixed so
// ("ab","c") and ("a","bc") differ.
func DigestHex(parts ...[]byte) string {
	h := sha256.New()
	var prefix [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := 0; i < 8; i++ {
			prefix[i] = byte(n >> (8 * i))
		}
		h.Write(prefix[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
