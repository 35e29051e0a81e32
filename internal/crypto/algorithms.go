package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudflare/circl/cipher/ascon"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/sha3"
)

// Algorithm names an authenticated cipher
type Algorithm string

const (
	AESGCM            Algorithm = "AES-GCM"
	ChaCha20Poly1305  Algorithm = "CHACHA20-POLY1305"
	XChaCha20Poly1305 Algorithm = "XCHACHA20-POLY1305"
	Ascon128          Algorithm = "ASCON-128"
	Ascon128a         Algorithm = "ASCON-128A"
)

// Hash names the digest used to turn a password into key material
type Hash string

const (
	SHA256     Hash = "SHA-256"
	SHA384     Hash = "SHA-384"
	SHA512     Hash = "SHA-512"
	SHA3_256   Hash = "SHA3-256"
	SHA3_512   Hash = "SHA3-512"
	BLAKE2b256 Hash = "BLAKE2B-256"
	BLAKE2b128 Hash = "BLAKE2B-128"
)

const (
	DefaultAlgorithm = AESGCM
	DefaultHash      = SHA256
	DefaultCharset   = "utf-8"
	DefaultNonceSize = 128 // bits

	// TagSize is the authentication tag length of every supported algorithm.
	TagSize = 16
)

type aeadSpec struct {
	keySizes []int
	// nonceSize is the only accepted nonce length in bytes; zero means any positive length
	nonceSize int
	new       func(key []byte, nonceSize int) (cipher.AEAD, error)
}

var aeadSpecs = map[Algorithm]aeadSpec{
	AESGCM: {
		keySizes: []int{16, 24, 32},
		new: func(key []byte, nonceSize int) (cipher.AEAD, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, fmt.Errorf("failed to create cipher: %w", err)
			}
			if nonceSize == 12 {
				return cipher.NewGCM(block)
			}
			return cipher.NewGCMWithNonceSize(block, nonceSize)
		},
	},
	ChaCha20Poly1305: {
		keySizes:  []int{chacha20poly1305.KeySize},
		nonceSize: chacha20poly1305.NonceSize,
		new: func(key []byte, _ int) (cipher.AEAD, error) {
			return chacha20poly1305.New(key)
		},
	},
	XChaCha20Poly1305: {
		keySizes:  []int{chacha20poly1305.KeySize},
		nonceSize: chacha20poly1305.NonceSizeX,
		new: func(key []byte, _ int) (cipher.AEAD, error) {
			return chacha20poly1305.NewX(key)
		},
	},
	Ascon128: {
		keySizes:  []int{ascon.KeySize},
		nonceSize: ascon.NonceSize,
		new: func(key []byte, _ int) (cipher.AEAD, error) {
			return ascon.New(key, ascon.Ascon128)
		},
	},
	Ascon128a: {
		keySizes:  []int{ascon.KeySize},
		nonceSize: ascon.NonceSize,
		new: func(key []byte, _ int) (cipher.AEAD, error) {
			return ascon.New(key, ascon.Ascon128a)
		},
	},
}

var hashFuncs = map[Hash]func([]byte) []byte{
	SHA256: func(b []byte) []byte { d := sha256.Sum256(b); return d[:] },
	SHA384: func(b []byte) []byte { d := sha512.Sum384(b); return d[:] },
	SHA512: func(b []byte) []byte { d := sha512.Sum512(b); return d[:] },
	SHA3_256: func(b []byte) []byte {
		d := sha3.Sum256(b)
		return d[:]
	},
	SHA3_512: func(b []byte) []byte {
		d := sha3.Sum512(b)
		return d[:]
	},
	BLAKE2b256: func(b []byte) []byte {
		d := blake2b.Sum256(b)
		return d[:]
	},
	BLAKE2b128: func(b []byte) []byte {
		h, _ := blake2b.New(16, nil) // only fails for sizes outside 1..64 or oversized keys
		h.Write(b)
		return h.Sum(nil)
	},
}

// ParseAlgorithm normalises an algorithm name, case-insensitively
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := aeadSpecs[alg]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}

// ParseHash normalises a hash algorithm name, case-insensitively
func ParseHash(name string) (Hash, error) {
	h := Hash(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := hashFuncs[h]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedHash, name)
	}
	return h, nil
}

// Algorithms lists the supported cipher names in sorted order
func Algorithms() []string {
	names := make([]string, 0, len(aeadSpecs))
	for alg := range aeadSpecs {
		names = append(names, string(alg))
	}
	slices.Sort(names)
	return names
}

// Hashes lists the supported hash names in sorted order
func Hashes() []string {
	names := make([]string, 0, len(hashFuncs))
	for h := range hashFuncs {
		names = append(names, string(h))
	}
	slices.Sort(names)
	return names
}

func checkNonceSize(alg Algorithm, bits int) error {
	if bits <= 0 || bits%8 != 0 {
		return fmt.Errorf("%w: %d bits is not a positive whole number of bytes", ErrInvalidNonceSize, bits)
	}
	spec := aeadSpecs[alg]
	if spec.nonceSize != 0 && bits/8 != spec.nonceSize {
		return fmt.Errorf("%w: %s requires %d bits, got %d", ErrInvalidNonceSize, alg, spec.nonceSize*8, bits)
	}
	return nil
}

func checkKeySize(alg Algorithm, key []byte) error {
	if !slices.Contains(aeadSpecs[alg].keySizes, len(key)) {
		return fmt.Errorf("%w: %s cannot use a %d-byte key", ErrInvalidKeySize, alg, len(key))
	}
	return nil
}
