// Package password derives and verifies credential hashes. The stored
// format is "salt:hash" with both parts hex-encoded; verification always
// reuses the stored salt and the same KDF parameters.
package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	iterations = 1000
	keyLength  = 64
)

// Hash derives a PBKDF2-SHA512 hash of the password under a fresh random
// salt and returns the encoded "salt:hash" credential string.
func Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password.Hash: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New)

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// Verify recomputes the hash of password with the salt extracted from the
// stored credential and compares in constant time. Malformed stored values
// verify false.
func Verify(password, stored string) bool {
	saltHex, hashHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New)

	return subtle.ConstantTimeCompare(got, want) == 1
}
