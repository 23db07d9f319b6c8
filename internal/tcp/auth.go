package tcp

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword answers the greeting challenge: sha256(password+salt), hashed
// again iterations-1 times, hex encoded. Zero iterations counts as one.
func HashPassword(password, salt string, iterations int) string {
	sum := sha256.Sum256([]byte(password + salt))
	for i := 1; i < iterations; i++ {
		sum = sha256.Sum256(sum[:])
	}
	return hex.EncodeToString(sum[:])
}
