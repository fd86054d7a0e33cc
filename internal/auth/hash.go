package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LegacyDigest is the unsalted single-round SHA-256 hex digest that older
// databases store. It is only ever used to verify those rows.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

func isLegacyDigest(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

// hashPassword returns a salted bcrypt hash of password.
func hashPassword(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// verifyPassword reports whether password matches hash, and whether hash is
// in the legacy format and should be replaced.
func verifyPassword(hash, password string) (ok, legacy bool) {
	switch {
	case isBcrypt(hash):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false
	case isLegacyDigest(hash):
		want := strings.ToLower(hash)
		got := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1, true
	}
	return false, false
}
