package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/illarion/pcrypto/internal/config"
	"github.com/illarion/pcrypto/internal/core"
	"github.com/illarion/pcrypto/internal/crypto"
	"github.com/illarion/pcrypto/internal/keyring"
)

// EnvPrefix prefixes every environment variable the CLI reads
const EnvPrefix = "PCRYPTO"

// app carries state shared by all subcommands of one root command
type app struct {
	v       *viper.Viper
	cfg     config.Config
	log     *slog.Logger
	cryptor *crypto.Cryptor
}

// Execute runs the CLI with os.Args
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(version string) *cobra.Command {
	a := &app{
		v:       viper.New(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		cryptor: crypto.New(nil),
	}

	root := &cobra.Command{
		Use:   "pcrypto [flags] command [flags]",
		Short: "Password-based text encryption",
		Long: `Encrypts text with a password into a hex envelope and back.
The envelope is the random nonce followed by the authenticated ciphertext.
Decryption needs the same password, charset, hash, algorithm and nonce size.

Every flag can also be set as PCRYPTO_<FLAG>, e.g. PCRYPTO_NONCE_SIZE=96.
The password is read from PCRYPTO_PASSWORD, the OS keyring or a prompt.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.load(cmd) },
	}

	pf := root.PersistentFlags()
	pf.String("charset", crypto.DefaultCharset, "Text encoding of plaintext and password")
	pf.StringP("algorithm", "a", string(crypto.DefaultAlgorithm), "Cipher, see 'pcrypto algorithms'")
	pf.String("hash", string(crypto.DefaultHash), "Hash used to derive the key from the password")
	pf.Int("nonce-size", 0, "Nonce size in bits, 0 selects the algorithm default")
	pf.String("store", core.StoreFile, "Path to the envelope store")
	pf.StringP("profile", "p", keyring.DefaultProfile, "Keyring profile holding the password")
	pf.String("env-file", "", "Load PCRYPTO_* variables from this .env file")
	pf.Bool("verbose", false, "Log pipeline parameters to stderr")

	root.AddCommand(
		newEncryptCommand(a),
		newDecryptCommand(a),
		newStoreCommand(a),
		newDiffCommand(a),
		newKeyringCommand(a),
		newAlgorithmsCommand(),
	)

	return root
}

// load binds flags and environment into the configuration
func (a *app) load(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if file := a.v.GetString("env-file"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if a.cfg.Verbose {
		a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	a.log.Debug("configuration loaded", "command", cmd.CommandPath(), "store", a.cfg.Store, "profile", a.cfg.Profile)

	return nil
}

// options validates the configuration and returns canonical cipher options without a password
func (a *app) options() (crypto.Options, error) {
	if err := a.cfg.Validate(); err != nil {
		return crypto.Options{}, err
	}
	opts, err := a.cfg.CryptoOptions().WithDefaults()
	if err != nil {
		return crypto.Options{}, err
	}

	a.log.Debug("cipher parameters",
		"algorithm", opts.Algorithm,
		"hash", opts.HashAlgorithm,
		"charset", opts.Charset,
		"nonceBits", opts.NonceSize,
	)
	return opts, nil
}

func (a *app) vault() (*core.Vault, error) {
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	return core.New(a.cfg.Store, a.cryptor, opts), nil
}
