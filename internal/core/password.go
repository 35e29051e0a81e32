package core

import (
	"crypto/subtle"
	"fmt"
	"io"
	"os"

	"github.com/illarion/pcrypto/internal/crypto"
	"golang.org/x/term"
)

// PasswordEnv names the environment variable checked before prompting
const PasswordEnv = "PCRYPTO_PASSWORD"

// ReadPassword reads a password from the terminal without echoing.
// When stdin is not a terminal the controlling tty is used, so piped input stays available.
func ReadPassword(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	var tty *os.File
	if !term.IsTerminal(fd) {
		f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("no terminal available to read password; set %s", PasswordEnv)
		}
		defer f.Close()
		tty = f
		fd = int(f.Fd())
	}

	var out io.Writer = os.Stderr
	if tty != nil {
		out = tty
	}
	fmt.Fprint(out, prompt)

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(out) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm() ([]byte, error) {
	password1, err := ReadPassword("Enter password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if subtle.ConstantTimeCompare(password1, password2) != 1 {
		return nil, fmt.Errorf("passwords do not match")
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// GetPasswordFromEnv reads the password from PCRYPTO_PASSWORD
func GetPasswordFromEnv() []byte {
	password := os.Getenv(PasswordEnv)
	if password == "" {
		return nil
	}
	return []byte(password)
}
