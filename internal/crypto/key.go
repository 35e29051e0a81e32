package crypto

import (
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// Key is password-derived key material bound to one cipher. It can only
// be used through the pipelines and is never exported.
type Key struct {
	alg      Algorithm
	material []byte
}

// PrepareKey derives the key for opts.Password. The result is the same for
// the same password, charset, hash and cipher. Call Destroy when done.
func PrepareKey(p Provider, opts Options) (*Key, error) {
	if opts.Password == "" {
		return nil, &MissingOptionError{Op: "prepare key", Option: "password"}
	}
	prm, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	return deriveKey(p, prm, opts.Password)
}

func deriveKey(p Provider, prm params, password string) (*Key, error) {
	encoded, err := encodeText(prm.charset, password)
	if err != nil {
		return nil, fmt.Errorf("failed to encode password: %w", err)
	}
	defer ClearBytes(encoded)

	digest, err := p.Digest(prm.hash, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := checkKeySize(prm.algorithm, digest); err != nil {
		ClearBytes(digest)
		return nil, fmt.Errorf("%s digest: %w", prm.hash, err)
	}

	return &Key{alg: prm.algorithm, material: digest}, nil
}

// Algorithm reports the cipher the key was imported for
func (k *Key) Algorithm() Algorithm {
	return k.alg
}

// Equal compares two keys in constant time
func (k *Key) Equal(other *Key) bool {
	return k.alg == other.alg && subtle.ConstantTimeCompare(k.material, other.material) == 1
}

func (k *Key) aead(p Provider, nonceSize int) (cipher.AEAD, error) {
	return p.AEAD(k.alg, k.material, nonceSize)
}

// Destroy zeroes the key material
func (k *Key) Destroy() {
	ClearBytes(k.material)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
