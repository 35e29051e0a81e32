package crypto

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredOption = errors.New("missing required option")
	ErrAuthenticationFailed  = errors.New("authentication failed")
	ErrMalformedInput        = errors.New("malformed input")

	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrUnsupportedHash      = errors.New("unsupported hash algorithm")
	ErrUnsupportedCharset   = errors.New("unsupported charset")
	ErrInvalidNonceSize     = errors.New("invalid nonce size")
	ErrInvalidKeySize       = errors.New("invalid key size")
)

// MissingOptionError names the option that was empty or absent.
// It matches ErrMissingRequiredOption with errors.Is.
type MissingOptionError struct {
	Op     string // "encrypt" or "decrypt"
	Option string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("%s requires option '%s'", e.Op, e.Option)
}

func (e *MissingOptionError) Is(target error) bool {
	return target == ErrMissingRequiredOption
}
