// Package crypto holds credential hashing and password-strength helpers.
package crypto

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/nbutton23/zxcvbn-go"
)

// HashPassword derives the stored credential hash. The scheme is a single
// deterministic round so existing user records keep validating; changing it
// invalidates every stored credential.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// PasswordScore rates a password 0-4 using zxcvbn.
func PasswordScore(password string) int {
	return zxcvbn.PasswordStrength(password, nil).Score
}
