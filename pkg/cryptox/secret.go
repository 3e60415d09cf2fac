package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for client secret hashing.
const (
	saltLength  = 16
	iterations  = 3
	memory      = 64 * 1024
	parallelism = 2
	keyLength   = 32
)

// HashSecret generates a PHC-format Argon2id hash string including salt
// and parameters, suitable for storing client secrets at rest.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, keyLength)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism, b64Salt, b64Hash,
	), nil
}

// VerifySecret compares a plaintext secret against a PHC-style Argon2id
// hash produced by HashSecret. The parameters embedded in the hash win,
// so old hashes stay verifiable after a parameter bump.
func VerifySecret(secret, encodedHash string) error {
	// PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := splitPHC(encodedHash)
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(secret), salt, iters, mem, par, uint32(len(expected)))
	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return errors.New("secret does not match")
	}
	return nil
}

func splitPHC(encoded string) []string {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encoded) {
		if encoded[i] == '$' {
			parts = append(parts, encoded[start:i])
			start = i + 1
		}
	}
	return append(parts, encoded[start:])
}
