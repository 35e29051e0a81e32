package crypto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding"
)

// Options are shared by encryption, decryption and key preparation.
// Empty fields take the package defaults. Both sides of an exchange must
// use the same values or decryption fails.
type Options struct {
	// Password may contain any characters but must not be empty
	Password      string `json:"password" validate:"required"`
	Charset       string `json:"charset,omitempty"`
	Algorithm     string `json:"algorithm,omitempty"`
	HashAlgorithm string `json:"hashAlgorithm,omitempty"`
	// NonceSize is in bits. Zero selects the algorithm's fixed nonce size,
	// or DefaultNonceSize for algorithms that accept several.
	NonceSize int `json:"nonceSize,omitempty"`
}

// EncryptOptions adds the text to encrypt
type EncryptOptions struct {
	Options
	Plaintext string `json:"plaintext" validate:"required"`
}

// DecryptOptions adds the hex envelope to decrypt
type DecryptOptions struct {
	Options
	Ciphertext string `json:"ciphertext" validate:"required"`
}

// params are Options after defaults and lookups; nonceSize is in bytes
type params struct {
	charset     encoding.Encoding
	charsetName string
	algorithm   Algorithm
	hash        Hash
	nonceSize   int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// checkRequired rejects empty required fields, naming the first one found
func checkRequired(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return &MissingOptionError{Op: op, Option: fe.Field()}
			}
		}
	}
	return fmt.Errorf("invalid %s options: %w", op, err)
}

// WithDefaults returns a copy with every empty field set to its default
// and algorithm names in canonical form.
func (o Options) WithDefaults() (Options, error) {
	p, err := o.resolve()
	if err != nil {
		return Options{}, err
	}
	o.Charset = p.charsetName
	o.Algorithm = string(p.algorithm)
	o.HashAlgorithm = string(p.hash)
	o.NonceSize = p.nonceSize * 8
	return o, nil
}

func (o Options) resolve() (params, error) {
	var (
		p   params
		err error
	)

	charset := o.Charset
	if charset == "" {
		charset = DefaultCharset
	}
	if p.charset, p.charsetName, err = lookupCharset(charset); err != nil {
		return params{}, err
	}

	p.algorithm = DefaultAlgorithm
	if o.Algorithm != "" {
		if p.algorithm, err = ParseAlgorithm(o.Algorithm); err != nil {
			return params{}, err
		}
	}

	p.hash = DefaultHash
	if o.HashAlgorithm != "" {
		if p.hash, err = ParseHash(o.HashAlgorithm); err != nil {
			return params{}, err
		}
	}

	bits := o.NonceSize
	if bits == 0 {
		bits = DefaultNonceSize
		if fixed := aeadSpecs[p.algorithm].nonceSize; fixed != 0 {
			bits = fixed * 8
		}
	}
	if err := checkNonceSize(p.algorithm, bits); err != nil {
		return params{}, err
	}
	p.nonceSize = bits / 8

	return p, nil
}
