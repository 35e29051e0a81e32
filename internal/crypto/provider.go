package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// Provider supplies the primitives the pipelines compose. Implementations
// must be safe for concurrent use if the Cryptor using them is shared.
type Provider interface {
	// Random returns n bytes from a cryptographically secure source
	Random(n int) ([]byte, error)
	// Digest hashes data with the named algorithm
	Digest(h Hash, data []byte) ([]byte, error)
	// AEAD returns the named cipher keyed with key, using nonceSize-byte nonces
	AEAD(alg Algorithm, key []byte, nonceSize int) (cipher.AEAD, error)
}

// StdProvider implements Provider with the standard library and
// golang.org/x/crypto, drawing randomness from an io.Reader.
type StdProvider struct {
	rand io.Reader
}

// NewProvider returns a provider reading randomness from r.
// A nil reader selects crypto/rand.Reader.
func NewProvider(r io.Reader) *StdProvider {
	if r == nil {
		r = rand.Reader
	}
	return &StdProvider{rand: r}
}

func (p *StdProvider) Random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(p.rand, b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

func (p *StdProvider) Digest(h Hash, data []byte) ([]byte, error) {
	sum, ok := hashFuncs[h]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedHash, h)
	}
	return sum(data), nil
}

func (p *StdProvider) AEAD(alg Algorithm, key []byte, nonceSize int) (cipher.AEAD, error) {
	spec, ok := aeadSpecs[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	if err := checkKeySize(alg, key); err != nil {
		return nil, err
	}
	if err := checkNonceSize(alg, nonceSize*8); err != nil {
		return nil, err
	}

	aead, err := spec.new(key, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", alg, err)
	}
	return aead, nil
}
