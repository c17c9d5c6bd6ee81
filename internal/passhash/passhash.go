// Package passhash implements salted password hashing with Argon2id.
//
// Hashes are produced in PHC string format:
//
//	$argon2id$v=19$m=15000,t=2,p=1$<salt_base64>$<hash_base64>
//
// The cost parameters are encoded in the hash string itself, so hashes
// produced under older parameters remain verifiable after the configured
// costs change.
package passhash

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dbocharov/newsletter/internal/common"
)

const (
	saltLen = 16
	keyLen  = 32
)

// ErrInvalidHash signals a hash string that cannot be parsed. It never
// indicates a password mismatch.
var ErrInvalidHash = errors.New("invalid password hash")

// Params holds the Argon2id cost parameters used for new hashes.
type Params struct {
	Memory  uint32 // memory cost in KiB
	Time    uint32 // number of iterations
	Threads uint8  // degree of parallelism
}

// DefaultParams returns the cost parameters used when none are configured.
func DefaultParams() Params {
	return Params{Memory: 15000, Time: 2, Threads: 1}
}

// Hash derives an Argon2id key from password with a fresh random salt and
// returns the PHC-formatted hash string.
func Hash(password string, p Params) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash of password using the parameters encoded in the
// PHC string and compares the result in constant time. The returned error is
// non-nil only for a malformed hash string, never for a mismatch.
func Verify(encoded, password string) (bool, error) {
	variant, version, p, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	if variant != "argon2id" {
		return false, fmt.Errorf("%w: unsupported variant %q", ErrInvalidHash, variant)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported version %d", ErrInvalidHash, version)
	}
	computed := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// decode parses a PHC string into its components:
// variant, version, cost parameters, salt and derived key.
func decode(encoded string) (string, int, Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return "", 0, p, nil, nil, fmt.Errorf("%w: expected 5 segments, got %d", ErrInvalidHash, len(parts)-1)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return "", 0, p, nil, nil, fmt.Errorf("%w: bad version segment %q", ErrInvalidHash, parts[2])
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return "", 0, p, nil, nil, fmt.Errorf("%w: bad parameter segment %q", ErrInvalidHash, parts[3])
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return "", 0, p, nil, nil, fmt.Errorf("%w: zero cost parameter in %q", ErrInvalidHash, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return "", 0, p, nil, nil, fmt.Errorf("%w: bad salt encoding", ErrInvalidHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return "", 0, p, nil, nil, fmt.Errorf("%w: bad key encoding", ErrInvalidHash)
	}
	if len(key) == 0 {
		return "", 0, p, nil, nil, fmt.Errorf("%w: empty key", ErrInvalidHash)
	}

	return parts[1], version, p, salt, key, nil
}
