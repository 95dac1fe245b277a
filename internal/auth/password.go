package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters tuned for interactive login latency.
const (
	argonMemory      uint32 = 19456 // KiB (~19 MiB)
	argonIterations  uint32 = 2
	argonParallelism uint8  = 1
	argonSaltLength  uint32 = 16
	argonKeyLength   uint32 = 32
)

// PasswordHasher hashes and verifies passwords with argon2id. It holds
// only cost parameters and is safe for concurrent use.
type PasswordHasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// NewPasswordHasher returns a hasher with the default cost parameters.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		memory:      argonMemory,
		iterations:  argonIterations,
		parallelism: argonParallelism,
		saltLength:  argonSaltLength,
		keyLength:   argonKeyLength,
	}
}

// Hash derives an argon2id hash of the password and returns it in the
// standard encoded form ($argon2id$v=19$m=...,t=...,p=...$salt$key).
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.iterations, h.memory, h.parallelism, h.keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.iterations,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether the password matches the encoded hash. The
// comparison is constant-time. Malformed or foreign hash input is never
// an error; it verifies as false.
func (h *PasswordHasher) Verify(encoded, password string) bool {
	memory, iterations, parallelism, salt, key, err := decodeArgon2Hash(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeArgon2Hash(encoded string) (memory, iterations uint32, parallelism uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("not an argon2id hash")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed version: %w", err)
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed salt: %w", err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed key: %w", err)
	}
	if len(key) == 0 {
		return 0, 0, 0, nil, nil, fmt.Errorf("empty key")
	}
	return memory, iterations, parallelism, salt, key, nil
}
