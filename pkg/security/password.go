package security

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/ogsoda/delivery-backend/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when asked to hash an empty string.
var ErrEmptyPassword = errors.New("password cannot be empty")

// DefaultCost is used when the configured cost is outside bcrypt's range.
const DefaultCost = 12

// bcryptPrefixes are the version markers bcrypt implementations emit.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Hasher hashes new credentials with bcrypt and verifies stored ones.
//
// Rows written before hashing was introduced still hold the raw password.
// While allowLegacyPlaintext is on, those rows verify by exact comparison.
// This is technical debt: disable it once NeedsRehash reports false for
// every stored credential.
type Hasher struct {
	cost                 int
	allowLegacyPlaintext bool
}

// NewHasher builds a Hasher from the password configuration.
func NewHasher(cfg config.PasswordConfig) *Hasher {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost, allowLegacyPlaintext: cfg.AllowLegacyPlaintext}
}

// Hash returns a salted bcrypt hash such as "$2a$12$...".
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify reports whether candidate matches stored. It never panics and
// resolves every failure to false.
func (h *Hasher) Verify(candidate, stored string) bool {
	if candidate == "" || stored == "" {
		return false
	}
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}

	if IsBcryptHash(stored) {
		return verifyBcrypt(candidate, stored)
	}

	if !h.allowLegacyPlaintext {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}

// NeedsRehash reports whether stored should be replaced with a fresh hash:
// legacy plaintext values and hashes below the configured cost.
func (h *Hasher) NeedsRehash(stored string) bool {
	stored = strings.TrimSpace(stored)
	if !IsBcryptHash(stored) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		return true
	}
	return cost < h.cost
}

// IsBcryptHash reports whether value carries a bcrypt version marker.
func IsBcryptHash(value string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

func verifyBcrypt(candidate, stored string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate))
	if err == nil {
		return true
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false
	}

	// Anything else is a parse failure. Hashes from other implementations
	// differ only in the version marker, so retry with the canonical one.
	normalized := "$2a$" + stored[len("$2a$"):]
	if normalized == stored {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(normalized), []byte(candidate)) == nil
}
