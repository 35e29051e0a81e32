// Package keyring remembers passwords in the OS keyring, one per profile.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "pcrypto"

// DefaultProfile is used when no profile is configured
const DefaultProfile = "default"

// ErrNotFound is returned when no password is stored for a profile
var ErrNotFound = keyring.ErrNotFound

func account(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}

// SavePassword stores a password in the OS keyring
func SavePassword(profile string, password string) error {
	if password == "" {
		return errors.New("refusing to store an empty password")
	}
	if err := keyring.Set(serviceName, account(profile), password); err != nil {
		return fmt.Errorf("failed to save password for profile %s: %w", account(profile), err)
	}
	return nil
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(profile string) (string, error) {
	return keyring.Get(serviceName, account(profile))
}

// DeletePassword removes a password from the OS keyring
func DeletePassword(profile string) error {
	return keyring.Delete(serviceName, account(profile))
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(profile string) bool {
	_, err := keyring.Get(serviceName, account(profile))
	return err == nil
}
