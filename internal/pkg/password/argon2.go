// Package password hashes and verifies user passwords.
//
// New hashes are argon2id strings in PHC format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
//
// Hashes produced by bcrypt ($2a$, $2b$, $2y$) are still accepted by Verify so
// accounts imported from older systems can sign in.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	algorithmID = "argon2id"

	minMemoryKB   uint32 = 8 * 1024
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
)

var (
	ErrInvalidHash     = errors.New("password: invalid hash format")
	ErrUnsupportedHash = errors.New("password: unsupported hash algorithm")
	ErrInvalidConfig   = errors.New("password: invalid argon2 config")
	ErrEmptyPassword   = errors.New("password: empty password")
)

// Config holds argon2id cost parameters.
type Config struct {
	MemoryKB    uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig matches the argon2 reference recommendation for interactive logins.
func DefaultConfig() Config {
	return Config{
		MemoryKB:    64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 implements ports.PasswordHasher.
type Argon2 struct {
	cfg Config
}

func NewArgon2(cfg Config) (*Argon2, error) {
	switch {
	case cfg.MemoryKB < minMemoryKB:
		return nil, fmt.Errorf("%w: memory must be >= %d KB", ErrInvalidConfig, minMemoryKB)
	case cfg.Iterations < 1:
		return nil, fmt.Errorf("%w: iterations must be >= 1", ErrInvalidConfig)
	case cfg.Parallelism < 1:
		return nil, fmt.Errorf("%w: parallelism must be >= 1", ErrInvalidConfig)
	case cfg.SaltLength < minSaltLength:
		return nil, fmt.Errorf("%w: salt length must be >= %d", ErrInvalidConfig, minSaltLength)
	case cfg.KeyLength < minKeyLength:
		return nil, fmt.Errorf("%w: key length must be >= %d", ErrInvalidConfig, minKeyLength)
	}
	return &Argon2{cfg: cfg}, nil
}

// Hash derives a PHC-encoded argon2id hash with a random salt.
func (a *Argon2) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, a.cfg.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("password: read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, a.cfg.Iterations, a.cfg.MemoryKB, a.cfg.Parallelism, a.cfg.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.cfg.MemoryKB,
		a.cfg.Iterations,
		a.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches hash. A malformed hash is an error,
// a mismatch is (false, nil).
func (a *Argon2) Verify(hash, plain string) (bool, error) {
	if isBcrypt(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
	}

	p, err := parsePHC(hash)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(plain), p.salt, p.iterations, p.memoryKB, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(key, p.key) == 1, nil
}

// NeedsRehash reports whether hash was produced with weaker parameters than a's.
func (a *Argon2) NeedsRehash(hash string) bool {
	if isBcrypt(hash) {
		return true
	}
	p, err := parsePHC(hash)
	if err != nil {
		return true
	}
	return p.memoryKB < a.cfg.MemoryKB ||
		p.iterations < a.cfg.Iterations ||
		p.parallelism < a.cfg.Parallelism ||
		uint32(len(p.key)) != a.cfg.KeyLength
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

type phc struct {
	memoryKB    uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parsePHC(encoded string) (*phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrInvalidHash
	}
	if parts[1] != algorithmID {
		return nil, ErrUnsupportedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrUnsupportedHash
	}

	var out phc
	for _, pair := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, ErrInvalidHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return nil, ErrInvalidHash
		}
		switch k {
		case "m":
			out.memoryKB = uint32(n)
		case "t":
			out.iterations = uint32(n)
		case "p":
			if n > 255 {
				return nil, ErrInvalidHash
			}
			out.parallelism = uint8(n)
		default:
			return nil, ErrInvalidHash
		}
	}
	if out.memoryKB == 0 || out.iterations == 0 || out.parallelism == 0 {
		return nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidHash
	}
	out.salt = salt
	out.key = key

	return &out, nil
}
