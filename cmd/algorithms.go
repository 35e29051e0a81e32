package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/illarion/pcrypto/internal/crypto"
)

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List supported ciphers and hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ciphers: %s\n", strings.Join(crypto.Algorithms(), ", "))
			fmt.Fprintf(out, "Hashes:  %s\n", strings.Join(crypto.Hashes(), ", "))
			fmt.Fprintf(out, "Default: %s with %s, %d-bit nonce, %s\n",
				crypto.DefaultAlgorithm, crypto.DefaultHash, crypto.DefaultNonceSize, crypto.DefaultCharset)
			return nil
		},
	}
}
