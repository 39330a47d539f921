// Package auth provides the credential mechanics the tracker treats as an
// external capability: argon2id password hashing and signed session tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMalformedHash is returned when a stored credential cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")

	// ErrHashVersion is returned when a stored credential was produced by an
	// incompatible argon2 version.
	ErrHashVersion = errors.New("incompatible password hash version")

	// ErrPasswordMismatch is returned when the password does not match.
	ErrPasswordMismatch = errors.New("password mismatch")
)

// argon2id parameters. Fixed rather than configurable: a stored hash
// carries its own parameters, so these only affect new registrations.
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonSaltLen     = 16
	argonKeyLen      = 32
)

// HashPassword derives an argon2id hash in the standard
// $argon2id$v=19$m=...,t=...,p=...$salt$hash encoding.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks a plaintext password against a stored hash using a
// constant-time comparison. Returns nil on match, ErrPasswordMismatch on a
// wrong password, and a parse error for corrupt hashes.
func VerifyPassword(stored, password string) error {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return ErrMalformedHash
	}
	if version != argon2.Version {
		return ErrHashVersion
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrMalformedHash
	}

	derived := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(key, derived) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
