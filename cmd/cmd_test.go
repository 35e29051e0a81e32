package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/illarion/pcrypto/internal/core"
	"github.com/illarion/pcrypto/internal/crypto"
	"github.com/illarion/pcrypto/internal/storage"
)

const testPassword = "doggos"

// run executes one CLI invocation and returns stdout, stderr and the error
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, errOut, err := run(t, stdin, args...)
	if err != nil {
		t.Fatalf("pcrypto %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)

	envelope := strings.TrimSpace(mustRun(t, "", "encrypt", "Hello, world!"))
	if want := 2 * (16 + len("Hello, world!") + crypto.TagSize); len(envelope) != want {
		t.Errorf("envelope length = %d, want %d", len(envelope), want)
	}

	out := mustRun(t, "", "decrypt", envelope)
	if out != "Hello, world!\n" {
		t.Errorf("decrypt output = %q", out)
	}
}

func TestStdinInput(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)

	envelope := mustRun(t, "from stdin\n", "enc")
	out := mustRun(t, envelope, "dec")
	if out != "from stdin\n" {
		t.Errorf("decrypt output = %q", out)
	}
}

func TestOptionSources(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantLen int
	}{
		{
			name:    "env algorithm",
			env:     map[string]string{"PCRYPTO_ALGORITHM": "xchacha20-poly1305"},
			wantLen: 2 * (24 + 5 + crypto.TagSize),
		},
		{
			name:    "flag nonce size",
			args:    []string{"--nonce-size", "96"},
			wantLen: 2 * (12 + 5 + crypto.TagSize),
		},
		{
			name:    "env nonce size",
			env:     map[string]string{"PCRYPTO_NONCE_SIZE": "256"},
			wantLen: 2 * (32 + 5 + crypto.TagSize),
		},
		{
			name:    "flag beats env",
			env:     map[string]string{"PCRYPTO_NONCE_SIZE": "256"},
			args:    []string{"--nonce-size", "96"},
			wantLen: 2 * (12 + 5 + crypto.TagSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(core.PasswordEnv, testPassword)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			args := append([]string{"encrypt", "hello"}, tt.args...)
			envelope := strings.TrimSpace(mustRun(t, "", args...))
			if len(envelope) != tt.wantLen {
				t.Errorf("envelope length = %d, want %d", len(envelope), tt.wantLen)
			}

			args = append([]string{"decrypt", envelope}, tt.args...)
			if out := mustRun(t, "", args...); out != "hello\n" {
				t.Errorf("decrypt output = %q", out)
			}
		})
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)
	envelope := strings.TrimSpace(mustRun(t, "", "encrypt", "secret"))

	t.Setenv(core.PasswordEnv, "not-doggos")
	_, _, err := run(t, "", "decrypt", envelope)
	if !errors.Is(err, crypto.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestDecryptMismatchedOptions(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)
	envelope := strings.TrimSpace(mustRun(t, "", "encrypt", "secret"))

	_, _, err := run(t, "", "decrypt", envelope, "--hash", "sha3-256")
	if !errors.Is(err, crypto.ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestConfigErrors(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)

	tests := []struct {
		args []string
		want error
	}{
		{[]string{"encrypt", "x", "--algorithm", "ROT13"}, crypto.ErrUnsupportedAlgorithm},
		{[]string{"encrypt", "x", "--hash", "MD5"}, crypto.ErrUnsupportedHash},
		{[]string{"encrypt", "x", "--charset", "klingon"}, crypto.ErrUnsupportedCharset},
		{[]string{"encrypt", "x", "--nonce-size", "12"}, crypto.ErrInvalidNonceSize},
		{[]string{"decrypt", "XYZ"}, crypto.ErrMalformedInput},
		{[]string{"encrypt", ""}, crypto.ErrMissingRequiredOption},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, err := run(t, "", tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLinesMode(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)

	out := mustRun(t, "alpha\nbeta\ngamma\n", "encrypt", "--lines", "-j", "2")
	envelopes := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(envelopes) != 3 {
		t.Fatalf("expected 3 envelopes, got %d: %q", len(envelopes), out)
	}

	plain := mustRun(t, out, "decrypt", "--lines")
	if plain != "alpha\nbeta\ngamma\n" {
		t.Errorf("decrypted lines = %q", plain)
	}
}

func TestLinesModePartialFailure(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)

	good := strings.TrimSpace(mustRun(t, "", "encrypt", "ok"))
	out, errOut, err := run(t, good+"\nZZ\n", "decrypt", "--lines")
	if !errors.Is(err, errBatchFailed) {
		t.Fatalf("expected errBatchFailed, got %v", err)
	}
	if out != "ok\n\n" {
		t.Errorf("stdout = %q, want aligned output", out)
	}
	if !strings.Contains(errOut, "line 2:") {
		t.Errorf("stderr should name the failed line, got %q", errOut)
	}
}

func TestVerboseNeverLogsPassword(t *testing.T) {
	t.Setenv(core.PasswordEnv, "super-secret-pw")

	_, errOut, err := run(t, "", "encrypt", "plain-text-value", "--verbose")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(errOut, "cipher parameters") {
		t.Errorf("verbose output missing parameters: %q", errOut)
	}
	for _, secret := range []string{"super-secret-pw", "plain-text-value"} {
		if strings.Contains(errOut, secret) {
			t.Errorf("verbose output leaks %q", secret)
		}
	}
}

func TestStoreCommands(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)
	store := filepath.Join(t.TempDir(), "test.pcrypto")

	mustRun(t, "", "store", "put", "api-key", "k-123", "--store", store)
	mustRun(t, "from stdin\n", "store", "put", "token", "--store", store, "-a", "ascon-128", "--hash", "blake2b-128")

	out := mustRun(t, "", "store", "ls", "--store", store)
	for _, want := range []string{"api-key", "token", "AES-GCM", "ASCON-128", "(id ", "modified "} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}
	header, _, _ := strings.Cut(out, "\n")

	// Entries open with their own parameters regardless of current flags
	if got := mustRun(t, "", "store", "get", "token", "--store", store); got != "from stdin\n" {
		t.Errorf("get token = %q", got)
	}
	if got := mustRun(t, "", "store", "get", "api-key", "--store", store); got != "k-123\n" {
		t.Errorf("get api-key = %q", got)
	}

	_, _, err := run(t, "", "store", "get", "missing", "--store", store)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get missing: expected ErrNotFound, got %v", err)
	}

	out = mustRun(t, "", "store", "rm", "api-key", "--store", store)
	if !strings.Contains(out, "Removed api-key") {
		t.Errorf("rm output = %q", out)
	}

	out = mustRun(t, "", "store", "compact", "--store", store)
	if !strings.HasPrefix(out, "Compacted:") {
		t.Errorf("compact output = %q", out)
	}

	out = mustRun(t, "", "store", "ls", "--store", store)
	if strings.Contains(out, "api-key") || !strings.Contains(out, "token") {
		t.Errorf("ls after rm:\n%s", out)
	}

	// The store keeps its ID across compaction
	id := header[strings.Index(header, "(id ")+4:]
	id, _, _ = strings.Cut(id, ",")
	if len(id) != 32 || !strings.Contains(out, "(id "+id+",") {
		t.Errorf("store ID not stable: %q vs\n%s", header, out)
	}

	// A failed removal leaves every entry in place
	if _, _, err := run(t, "", "store", "rm", "token", "missing", "--store", store); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("rm with unknown name: expected ErrNotFound, got %v", err)
	}
	if got := mustRun(t, "", "store", "get", "token", "--store", store); got != "from stdin\n" {
		t.Errorf("token lost after failed rm: %q", got)
	}
}

func TestStoreMissing(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)
	store := filepath.Join(t.TempDir(), "none.pcrypto")

	_, _, err := run(t, "", "store", "ls", "--store", store)
	if !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestDiffCommand(t *testing.T) {
	t.Setenv(core.PasswordEnv, testPassword)
	dir := t.TempDir()
	store := filepath.Join(dir, "test.pcrypto")

	mustRun(t, "A=1\nB=2\n\n", "store", "put", "env", "--store", store)

	local := filepath.Join(dir, ".env")
	if err := os.WriteFile(local, []byte("A=1\nB=2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	out := mustRun(t, "", "diff", "env", local, "--store", store)
	if !strings.Contains(out, "No changes detected") {
		t.Errorf("expected no changes, got:\n%s", out)
	}

	if err := os.WriteFile(local, []byte("A=1\nB=3\n"), 0600); err != nil {
		t.Fatal(err)
	}
	out = mustRun(t, "", "diff", "env", local, "--store", store)
	for _, want := range []string{"-B=2", "+B=3", "1 line(s) added, 1 removed"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
}

func TestKeyringCommands(t *testing.T) {
	gokeyring.MockInit()
	store := filepath.Join(t.TempDir(), "test.pcrypto")

	out := mustRun(t, "", "keyring", "status", "--profile", "work")
	if !strings.Contains(out, "not stored") {
		t.Errorf("status before save = %q", out)
	}

	t.Setenv(core.PasswordEnv, testPassword)
	mustRun(t, "", "store", "put", "k", "v", "--store", store)
	mustRun(t, "", "keyring", "save", "--profile", "work", "--store", store)

	out = mustRun(t, "", "keyring", "status", "--profile", "work")
	if !strings.Contains(out, "stored in keyring") {
		t.Errorf("status after save = %q", out)
	}

	// Without the env variable the keyring supplies the password
	t.Setenv(core.PasswordEnv, "")
	if got := mustRun(t, "", "store", "get", "k", "--profile", "work", "--store", store); got != "v\n" {
		t.Errorf("get via keyring = %q", got)
	}

	out = mustRun(t, "", "keyring", "delete", "--profile", "work")
	if !strings.Contains(out, "removed") {
		t.Errorf("delete output = %q", out)
	}
	out = mustRun(t, "", "keyring", "delete", "--profile", "work")
	if !strings.Contains(out, "No password stored") {
		t.Errorf("second delete output = %q", out)
	}
}

func TestKeyringDeleteBackendError(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("secret service unavailable"))
	t.Cleanup(gokeyring.MockInit)

	out, _, err := run(t, "", "keyring", "delete", "--profile", "work")
	if err == nil || !strings.Contains(err.Error(), "secret service unavailable") {
		t.Errorf("expected backend error, got %v", err)
	}
	if strings.Contains(out, "No password stored") {
		t.Errorf("backend failure reported as missing password: %q", out)
	}
}

func TestKeyringSaveRejectsWrongPassword(t *testing.T) {
	gokeyring.MockInit()
	store := filepath.Join(t.TempDir(), "test.pcrypto")

	t.Setenv(core.PasswordEnv, testPassword)
	mustRun(t, "", "store", "put", "k", "v", "--store", store)

	t.Setenv(core.PasswordEnv, "wrong")
	_, _, err := run(t, "", "keyring", "save", "--store", store)
	if !errors.Is(err, crypto.ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}

	out := mustRun(t, "", "keyring", "status")
	if !strings.Contains(out, "not stored") {
		t.Errorf("wrong password was saved: %q", out)
	}
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "PCRYPTO_PASSWORD=from-dotenv\nPCRYPTO_HASH=SHA3-256\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	// godotenv never overrides set variables; register cleanup, then unset
	for _, key := range []string{"PCRYPTO_PASSWORD", "PCRYPTO_HASH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	envelope := strings.TrimSpace(mustRun(t, "", "encrypt", "dotenv", "--env-file", envFile))

	// The file stays loaded in this process, so decrypt with the default hash fails
	if _, _, err := run(t, "", "decrypt", envelope, "--hash", "SHA-256"); !errors.Is(err, crypto.ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed with a different hash, got %v", err)
	}
	if out := mustRun(t, "", "decrypt", envelope); out != "dotenv\n" {
		t.Errorf("decrypt = %q", out)
	}
}

func TestAlgorithmsCommand(t *testing.T) {
	out := mustRun(t, "", "algorithms")
	for _, want := range []string{"AES-GCM", "XCHACHA20-POLY1305", "ASCON-128A", "BLAKE2B-128", "SHA3-512"} {
		if !strings.Contains(out, want) {
			t.Errorf("algorithms output missing %q", want)
		}
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"missing option", &crypto.MissingOptionError{Op: "encrypt", Option: "password"}, []string{"encrypt requires option 'password'", core.PasswordEnv}},
		{"auth", crypto.ErrAuthenticationFailed, []string{"authentication failed"}},
		{"unsupported", crypto.ErrUnsupportedHash, []string{"pcrypto algorithms"}},
		{"no store", core.ErrNotInitialized, []string{"no store found"}},
		{"not found", storage.ErrNotFound, []string{"store ls"}},
		{"other", errors.New("boom"), []string{"Error: boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("printError() = %q, missing %q", buf.String(), want)
				}
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("a\r\nb\n\nc")
	want := []string{"a", "b", "", "c"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitLines() = %q, want %q", got, want)
	}
	if splitLines("") != nil {
		t.Error("splitLines(\"\") should be nil")
	}
}
