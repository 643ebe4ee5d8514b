package service

import (
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// VerifyPassword checks supplied against the stored credential. Stored
// values that look like bcrypt or argon2id hashes are verified as such;
// anything else is compared as plaintext.
func VerifyPassword(stored, supplied string) bool {
	switch {
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	case strings.HasPrefix(stored, "$argon2id$"):
		match, err := argon2id.ComparePasswordAndHash(supplied, stored)
		return err == nil && match
	default:
		return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
	}
}
