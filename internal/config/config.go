// Package config holds the CLI configuration assembled from flags,
// PCRYPTO_* environment variables and an optional .env file.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/illarion/pcrypto/internal/crypto"
)

type Config struct {
	// Cipher parameters
	Charset   string
	Algorithm string
	Hash      string
	NonceSize int `mapstructure:"nonce-size" validate:"gte=0"` // bits, 0 = algorithm default

	// Store and password lookup
	Store   string `validate:"required"`
	Profile string `validate:"required"`
	EnvFile string `mapstructure:"env-file"`

	// Batch mode
	Lines    bool
	Parallel int `validate:"gte=0"` // 0 = number of CPUs

	Verbose bool
}

// Validate validates the configuration against the struct tags
func (c Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	// Cipher names and sizes are checked by the crypto package
	if _, err := c.CryptoOptions().WithDefaults(); err != nil {
		return err
	}

	return nil
}

// CryptoOptions converts the cipher parameters. The password is left empty.
func (c Config) CryptoOptions() crypto.Options {
	return crypto.Options{
		Charset:       c.Charset,
		Algorithm:     c.Algorithm,
		HashAlgorithm: c.Hash,
		NonceSize:     c.NonceSize,
	}
}
