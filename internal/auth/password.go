// Package auth provides password hashing and cookie-session
// authentication backed by the relational store.
package auth

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

// Hasher hashes and verifies passwords with argon2id.
type Hasher struct {
	params *argon2id.Params
}

// NewHasher returns a Hasher with the library default parameters.
func NewHasher() *Hasher {
	return &Hasher{params: argon2id.DefaultParams}
}

// Hash returns the encoded $argon2id$... string for storage.
func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("auth: argon2id params not set")
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify reports whether plain matches the stored encoded hash.
func (h *Hasher) Verify(plain, encodedHash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plain, encodedHash)
	return err == nil && ok
}
