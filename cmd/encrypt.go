package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/pcrypto/internal/batch"
	"github.com/illarion/pcrypto/internal/crypto"
)

var errBatchFailed = errors.New("some lines failed")

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("lines", "l", false, "Treat every input line as a separate item")
	cmd.Flags().IntP("parallel", "j", 0, "Number of parallel workers in --lines mode, 0 uses all CPUs")
}

func newEncryptCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] [text]",
		Aliases: []string{"enc"},
		Short:   "Encrypt text into a hex envelope",
		Long: `Encrypts the argument, or stdin when no argument is given.
Every call uses a fresh random nonce, so the output differs each time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCipher(cmd, args, true)
		},
	}
	addBatchFlags(cmd)
	return cmd
}

func newDecryptCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] [hex]",
		Aliases: []string{"dec"},
		Short:   "Decrypt a hex envelope",
		Long: `Decrypts the argument, or stdin when no argument is given.
The options must match the ones used for encryption.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCipher(cmd, args, false)
		},
	}
	addBatchFlags(cmd)
	return cmd
}

func (a *app) runCipher(cmd *cobra.Command, args []string, encrypt bool) error {
	opts, err := a.options()
	if err != nil {
		return err
	}

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	password, err := a.password(true, encrypt)
	if err != nil {
		return err
	}
	opts.Password = password

	if a.cfg.Lines {
		return a.runBatch(cmd, opts, splitLines(input), encrypt)
	}

	var out string
	if encrypt {
		a.log.Debug("encrypting", "bytes", len(input))
		out, err = a.cryptor.Encrypt(crypto.EncryptOptions{Options: opts, Plaintext: input})
	} else {
		input = strings.TrimSpace(input)
		a.log.Debug("decrypting", "hexChars", len(input))
		out, err = a.cryptor.Decrypt(crypto.DecryptOptions{Options: opts, Ciphertext: input})
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// runBatch writes one output line per input line. Failed lines print empty
// so the output stays aligned with the input.
func (a *app) runBatch(cmd *cobra.Command, opts crypto.Options, lines []string, encrypt bool) error {
	a.log.Debug("batch", "lines", len(lines), "parallel", a.cfg.Parallel)

	var (
		results []batch.Result
		err     error
	)
	if encrypt {
		results, err = batch.Encrypt(cmd.Context(), a.cryptor, opts, lines, a.cfg.Parallel)
	} else {
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		results, err = batch.Decrypt(cmd.Context(), a.cryptor, opts, lines, a.cfg.Parallel)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintln(out, r.Output)
	}

	failed := batch.Failed(results)
	for _, r := range failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %s\n", r.Index+1, r.Err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", errBatchFailed, len(failed), len(results))
	}
	return nil
}
