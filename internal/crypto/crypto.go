package crypto

import (
	"fmt"

	"github.com/illarion/pcrypto/internal/hexcodec"
)

// Cryptor runs the encryption and decryption pipelines against a Provider.
// It holds no per-call state and is safe for concurrent use when its
// provider is.
type Cryptor struct {
	provider Provider
}

// New creates a Cryptor. A nil provider selects NewProvider(nil).
func New(p Provider) *Cryptor {
	if p == nil {
		p = NewProvider(nil)
	}
	return &Cryptor{provider: p}
}

var std = New(nil)

// Encrypt encrypts opts.Plaintext with opts.Password and returns the hex envelope
func Encrypt(opts EncryptOptions) (string, error) {
	return std.Encrypt(opts)
}

// Decrypt opens a hex envelope produced by Encrypt with the same options
func Decrypt(opts DecryptOptions) (string, error) {
	return std.Decrypt(opts)
}

// Encrypt returns hex(nonce || ciphertext || tag)
func (c *Cryptor) Encrypt(opts EncryptOptions) (string, error) {
	if err := checkRequired("encrypt", opts); err != nil {
		return "", err
	}
	prm, err := opts.resolve()
	if err != nil {
		return "", err
	}

	// Fresh nonce on every call; reuse under the same key breaks the cipher
	nonce, err := c.provider.Random(prm.nonceSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := deriveKey(c.provider, prm, opts.Password)
	if err != nil {
		return "", err
	}
	defer key.Destroy()

	aead, err := key.aead(c.provider, prm.nonceSize)
	if err != nil {
		return "", err
	}

	plaintext, err := encodeText(prm.charset, opts.Plaintext)
	if err != nil {
		return "", err
	}
	defer ClearBytes(plaintext)

	envelope := make([]byte, len(nonce), len(nonce)+len(plaintext)+aead.Overhead())
	copy(envelope, nonce)
	envelope = aead.Seal(envelope, nonce, plaintext, nil)

	return hexcodec.Encode(envelope), nil
}

// Decrypt reverses Encrypt. A wrong password, tampered envelope or
// mismatched options fail with ErrAuthenticationFailed.
func (c *Cryptor) Decrypt(opts DecryptOptions) (string, error) {
	if err := checkRequired("decrypt", opts); err != nil {
		return "", err
	}
	prm, err := opts.resolve()
	if err != nil {
		return "", err
	}

	envelope, err := hexcodec.Decode(opts.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if len(envelope) < prm.nonceSize+TagSize {
		return "", fmt.Errorf("%w: envelope is %d bytes, need at least %d",
			ErrMalformedInput, len(envelope), prm.nonceSize+TagSize)
	}
	nonce, body := envelope[:prm.nonceSize], envelope[prm.nonceSize:]

	key, err := deriveKey(c.provider, prm, opts.Password)
	if err != nil {
		return "", err
	}
	defer key.Destroy()

	aead, err := key.aead(c.provider, prm.nonceSize)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return "", ErrAuthenticationFailed
	}
	defer ClearBytes(plaintext)

	return decodeText(prm.charset, plaintext)
}

// EnvelopeSize returns the hex length Encrypt produces for a plaintext of
// n encoded bytes under opts
func EnvelopeSize(opts Options, n int) (int, error) {
	prm, err := opts.resolve()
	if err != nil {
		return 0, err
	}
	return 2 * (prm.nonceSize + n + TagSize), nil
}
