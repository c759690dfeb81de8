// Package password hashes credentials with argon2id and a server-side pepper.
package password

import (
	"crypto/subtle"

	"github.com/alexedwards/argon2id"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type Hasher struct {
	pepper string
	params *argon2id.Params
}

func NewHasher(pepper string) *Hasher {
	return NewHasherWithParams(pepper, argonParams)
}

func NewHasherWithParams(pepper string, params *argon2id.Params) *Hasher {
	return &Hasher{pepper: pepper, params: params}
}

func (h *Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain+h.pepper, h.params)
}

func (h *Hasher) Verify(plain, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain+h.pepper, hash)
}

// Changed reports whether candidate differs from what storedHash protects.
// A candidate equal to the stored hash itself, or one that verifies against it,
// is treated as unchanged.
func (h *Hasher) Changed(candidate, storedHash string) bool {
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1 {
		return false
	}
	ok, err := h.Verify(candidate, storedHash)
	return err != nil || !ok
}
