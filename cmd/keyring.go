package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/pcrypto/internal/core"
	"github.com/illarion/pcrypto/internal/keyring"
)

func newKeyringCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyring",
		Short: "Remember the password in the OS keyring",
		Long: `Stores the password for the selected --profile in the OS keyring so
later commands do not prompt. PCRYPTO_PASSWORD still takes precedence.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save",
			Short: "Save the password to the keyring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.keyringSave(cmd)
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the password from the keyring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				err := keyring.DeletePassword(a.cfg.Profile)
				if errors.Is(err, keyring.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "No password stored in keyring")
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to delete from keyring: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password removed from keyring")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether a password is stored",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if keyring.HasPassword(a.cfg.Profile) {
					fmt.Fprintf(cmd.OutOrStdout(), "Password: stored in keyring (profile %s)\n", a.cfg.Profile)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Password: not stored")
				}
				return nil
			},
		},
	)

	return cmd
}

func (a *app) keyringSave(cmd *cobra.Command) error {
	password, err := a.password(false, true)
	if err != nil {
		return err
	}

	if err := a.verifyPassword(cmd.Context(), password); err != nil {
		return err
	}

	if err := keyring.SavePassword(a.cfg.Profile, password); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Password saved to keyring (profile %s)\n", a.cfg.Profile)
	return nil
}

// verifyPassword checks the password against the first stored entry, if any
func (a *app) verifyPassword(ctx context.Context, password string) error {
	v, err := a.vault()
	if err != nil {
		return err
	}

	entries, err := v.List(ctx)
	if errors.Is(err, core.ErrNotInitialized) || len(entries) == 0 {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := v.Get(ctx, entries[0].Name, password); err != nil {
		return fmt.Errorf("password does not open %s: %w", entries[0].Name, err)
	}
	return nil
}
