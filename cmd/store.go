package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/illarion/pcrypto/internal/core"
)

func newStoreCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep named envelopes in a store file",
		Long: `Stores envelopes under names in a local file (default .pcrypto).
Each entry remembers the cipher options it was encrypted with.
Passwords are never written to the store.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "put <name> [text]",
			Short: "Encrypt text (or stdin) and store it under name",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.storePut(cmd, args[0], args[1:])
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Decrypt a stored entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.storeGet(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List stored entries (no password required)",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.storeList(cmd)
			},
		},
		&cobra.Command{
			Use:   "rm <name> [name...]",
			Short: "Remove entries",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.storeRemove(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "compact",
			Short: "Compact the store to reclaim disk space",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.storeCompact(cmd)
			},
		},
	)

	return cmd
}

func (a *app) storePut(cmd *cobra.Command, name string, rest []string) error {
	v, err := a.vault()
	if err != nil {
		return err
	}

	text, err := readInput(cmd, rest)
	if err != nil {
		return err
	}

	password, err := a.password(true, true)
	if err != nil {
		return err
	}

	entry, err := v.Put(cmd.Context(), name, text, password)
	if err != nil {
		return err
	}

	a.log.Debug("stored entry", "name", entry.Name, "hexChars", len(entry.Envelope))
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (%s, %s)\n", entry.Name, entry.Algorithm, entry.HashAlgorithm)
	return nil
}

func (a *app) storeGet(cmd *cobra.Command, name string) error {
	v, err := a.vault()
	if err != nil {
		return err
	}

	password, err := a.password(true, false)
	if err != nil {
		return err
	}

	text, err := v.Get(cmd.Context(), name, password)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func (a *app) storeList(cmd *cobra.Command) error {
	v, err := a.vault()
	if err != nil {
		return err
	}

	entries, err := v.List(cmd.Context())
	if err != nil {
		return err
	}

	info, err := v.Info()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Store %s (id %s, modified %s)\n",
		v.Path(), info.ID, info.Modified.Local().Format("2006-01-02 15:04:05"))
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "  %-24s %-20s %-12s %4d-bit nonce  %-10s %s\n",
			e.Name, e.Algorithm, e.HashAlgorithm, e.NonceSize,
			formatSize(int64(len(e.Envelope)/2)), e.Modified.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) storeRemove(cmd *cobra.Command, names []string) error {
	v, err := a.vault()
	if err != nil {
		return err
	}

	if err := v.Remove(cmd.Context(), names); err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
	}

	// Compact database to reclaim space
	if err := v.Compact(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: compaction failed: %s\n", err)
	}
	return nil
}

func (a *app) storeCompact(cmd *cobra.Command) error {
	v, err := a.vault()
	if err != nil {
		return err
	}

	info, err := os.Stat(v.Path())
	if err != nil {
		return core.ErrNotInitialized
	}
	sizeBefore := info.Size()

	if err := v.Compact(); err != nil {
		return err
	}

	info, err = os.Stat(v.Path())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(info.Size()))
	return nil
}
