package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/pcrypto/internal/core"
	"github.com/illarion/pcrypto/internal/crypto"
	"github.com/illarion/pcrypto/internal/keyring"
	"github.com/illarion/pcrypto/internal/storage"
)

// password returns the password from PCRYPTO_PASSWORD, then the keyring
// profile when useKeyring is set, then a terminal prompt.
// confirm asks twice when prompting.
func (a *app) password(useKeyring, confirm bool) (string, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		a.log.Debug("password source", "source", "environment")
		return string(password), nil
	}

	if useKeyring {
		if password, err := keyring.GetPassword(a.cfg.Profile); err == nil && password != "" {
			a.log.Debug("password source", "source", "keyring", "profile", a.cfg.Profile)
			return password, nil
		}
	}

	var (
		password []byte
		err      error
	)
	if confirm {
		password, err = core.ReadPasswordConfirm()
	} else {
		password, err = core.ReadPassword("Enter password: ")
	}
	if err != nil {
		return "", err
	}
	defer crypto.ClearBytes(password)

	a.log.Debug("password source", "source", "prompt")
	return string(password), nil
}

// readInput returns the first argument, or stdin without its final line break
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return trimNewline(string(data)), nil
}

func trimNewline(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}

// splitLines splits batch input into lines, dropping carriage returns
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// formatSize formats a byte count in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

// HandleError prints err with a hint and exits
func HandleError(err error) {
	printError(os.Stderr, err)
	os.Exit(1)
}

func printError(w io.Writer, err error) {
	var missing *crypto.MissingOptionError

	switch {
	case errors.As(err, &missing):
		fmt.Fprintf(w, "Error: %s\n", missing)
		if missing.Option == "password" {
			fmt.Fprintf(w, "Set %s or run 'pcrypto keyring save'\n", core.PasswordEnv)
		}
	case errors.Is(err, crypto.ErrAuthenticationFailed):
		fmt.Fprintf(w, "Error: authentication failed\n")
		fmt.Fprintf(w, "The password or cipher options differ from the ones used to encrypt\n")
	case errors.Is(err, crypto.ErrMalformedInput):
		fmt.Fprintf(w, "Error: %s\n", err)
	case errors.Is(err, crypto.ErrUnsupportedAlgorithm), errors.Is(err, crypto.ErrUnsupportedHash):
		fmt.Fprintf(w, "Error: %s\n", err)
		fmt.Fprintf(w, "Run 'pcrypto algorithms' to list supported names\n")
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(w, "Error: no store found\n")
		fmt.Fprintf(w, "Run 'pcrypto store put <name>' to create one\n")
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintf(w, "Error: %s\n", err)
		fmt.Fprintf(w, "Use 'pcrypto store ls' to see stored names\n")
	case errors.Is(err, core.ErrPasswordRequired):
		fmt.Fprintf(w, "Error: password required\n")
		fmt.Fprintf(w, "Set %s or run 'pcrypto keyring save'\n", core.PasswordEnv)
	default:
		fmt.Fprintf(w, "Error: %s\n", err)
	}
}
