package crypto

import (
	"github.com/alexedwards/argon2id"
)

// PinHasher hashes room PINs with argon2id.
type PinHasher struct {
	params *argon2id.Params
}

// NewPinHasher creates a hasher with the specified difficulty parameters.
//
// memory must be provided in Kilobytes (KB).
func NewPinHasher(time, memory, keyLength, saltLength uint32, parallelism uint8) *PinHasher {
	return &PinHasher{
		params: &argon2id.Params{
			Memory:      memory,
			Iterations:  time,
			Parallelism: parallelism,
			SaltLength:  saltLength,
			KeyLength:   keyLength,
		},
	}
}

// DefaultPinHasher is tuned for short shared secrets checked once per join.
func DefaultPinHasher() *PinHasher {
	return NewPinHasher(1, 19*1024, 32, 16, 2)
}

func (h *PinHasher) Hash(pin string) (string, error) {
	return argon2id.CreateHash(pin, h.params)
}

// Compare verifies a pin against a hash.
func (h *PinHasher) Compare(hash, pin string) (bool, error) {
	return argon2id.ComparePasswordAndHash(pin, hash)
}
