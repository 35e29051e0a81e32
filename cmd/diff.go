package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/illarion/pcrypto/internal/git"
)

func newDiffCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <name> [file]",
		Short: "Compare a stored entry with a local file or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.vault()
			if err != nil {
				return err
			}

			var local string
			if len(args) == 2 {
				data, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[1], err)
				}
				local = string(data)

				if w := git.CheckPlaintext(args[1]).Warning(); w != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), w)
				}
			} else if local, err = readInput(cmd, nil); err != nil {
				return err
			}

			password, err := a.password(true, false)
			if err != nil {
				return err
			}

			diff, err := v.Diff(cmd.Context(), args[0], local, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if diff.Text == "" {
				fmt.Fprintln(out, "No changes detected")
				return nil
			}

			fmt.Fprint(out, diff.Text)
			fmt.Fprintf(out, "%d line(s) added, %d removed\n", diff.Added, diff.Removed)
			return nil
		},
	}
}
