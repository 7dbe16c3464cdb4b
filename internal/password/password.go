// Package password hashes and verifies the admin password.
//
// New hashes use bcrypt so db.json stays readable by older deployments.
// Verification also accepts argon2id hashes in PHC string format
// ($argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>).
package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new hashes.
const Cost = 12

// MinLength is the shortest password accepted when the admin changes it.
const MinLength = 8

// MaxLength is the longest password, in bytes, bcrypt can hash.
const MaxLength = 72

// ErrTooLong is returned for passwords bcrypt cannot hash.
var ErrTooLong = fmt.Errorf("password exceeds %d bytes", MaxLength)

// Hash returns a bcrypt hash of plain.
func Hash(plain string) (string, error) {
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches encoded. Unknown or malformed hashes
// never match.
func Verify(plain, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2id(plain, encoded)
	default:
		return false
	}
}

// verifyArgon2id checks plain against a PHC-format argon2id hash.
func verifyArgon2id(plain, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, computed) == 1
}
