package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/illarion/pcrypto/internal/crypto"
	"github.com/illarion/pcrypto/internal/storage"
)

const (
	StoreFile = ".pcrypto"
)

var (
	ErrNotInitialized   = errors.New("store not initialized")
	ErrPasswordRequired = errors.New("password required")
	ErrNoNames          = errors.New("no entry names given")
)

// Vault keeps named envelopes in a store file. Each entry records the cipher
// parameters it was sealed with, so later reads do not depend on the
// options the vault was opened with.
type Vault struct {
	path    string
	cryptor *crypto.Cryptor
	opts    crypto.Options
}

// New creates a vault over the store file at path. opts supplies the cipher
// parameters for new entries; its Password field is ignored.
func New(path string, c *crypto.Cryptor, opts crypto.Options) *Vault {
	if path == "" {
		path = StoreFile
	}
	if c == nil {
		c = crypto.New(nil)
	}
	opts.Password = ""
	return &Vault{path: path, cryptor: c, opts: opts}
}

// Path returns the store file location
func (v *Vault) Path() string {
	return v.path
}

// open opens an existing store, or creates one when create is set
func (v *Vault) open(create bool) (*storage.Storage, error) {
	if _, err := os.Stat(v.path); err != nil && !(create && os.IsNotExist(err)) {
		return nil, ErrNotInitialized
	}

	db, err := storage.Open(v.path)
	if err != nil {
		return nil, err
	}
	if create {
		if err := db.Initialize(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Put encrypts plaintext and stores it under name, replacing any previous entry
func (v *Vault) Put(ctx context.Context, name, plaintext, password string) (storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return storage.Entry{}, err
	}
	if name == "" {
		return storage.Entry{}, storage.ErrEmptyName
	}
	if password == "" {
		return storage.Entry{}, ErrPasswordRequired
	}

	opts, err := v.opts.WithDefaults()
	if err != nil {
		return storage.Entry{}, err
	}
	opts.Password = password

	envelope, err := v.cryptor.Encrypt(crypto.EncryptOptions{Options: opts, Plaintext: plaintext})
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to encrypt %s: %w", name, err)
	}

	db, err := v.open(true)
	if err != nil {
		return storage.Entry{}, err
	}
	defer db.Close()

	entry := storage.Entry{
		Name:          name,
		Envelope:      envelope,
		Algorithm:     opts.Algorithm,
		HashAlgorithm: opts.HashAlgorithm,
		Charset:       opts.Charset,
		NonceSize:     opts.NonceSize,
	}
	if err := db.Put(entry); err != nil {
		return storage.Entry{}, fmt.Errorf("failed to store %s: %w", name, err)
	}
	return db.Get(name)
}

// Get decrypts the entry stored under name
func (v *Vault) Get(ctx context.Context, name, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if password == "" {
		return "", ErrPasswordRequired
	}

	db, err := v.open(false)
	if err != nil {
		return "", err
	}
	defer db.Close()

	entry, err := db.Get(name)
	if err != nil {
		return "", err
	}
	return v.decryptEntry(entry, password)
}

func (v *Vault) decryptEntry(e storage.Entry, password string) (string, error) {
	plaintext, err := v.cryptor.Decrypt(crypto.DecryptOptions{
		Options:    entryOptions(e, password),
		Ciphertext: e.Envelope,
	})
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", e.Name, err)
	}
	return plaintext, nil
}

func entryOptions(e storage.Entry, password string) crypto.Options {
	return crypto.Options{
		Password:      password,
		Charset:       e.Charset,
		Algorithm:     e.Algorithm,
		HashAlgorithm: e.HashAlgorithm,
		NonceSize:     e.NonceSize,
	}
}

// List returns every entry in name order. No password is needed.
func (v *Vault) List(ctx context.Context) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := v.open(false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.List()
}

// Remove deletes the named entries. Nothing is deleted if any name is unknown.
func (v *Vault) Remove(ctx context.Context, names []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(names) == 0 {
		return ErrNoNames
	}

	db, err := v.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Delete(names...)
}

// DiffResult is the line diff between a stored entry and local text
type DiffResult struct {
	Text    string // empty when identical
	Added   int
	Removed int
}

// Diff decrypts the entry under name and compares it with local.
func (v *Vault) Diff(ctx context.Context, name, local, password string) (DiffResult, error) {
	stored, err := v.Get(ctx, name, password)
	if err != nil {
		return DiffResult{}, err
	}

	res := DiffResult{Text: UnifiedDiff(name, stored, local)}
	if res.Text != "" {
		res.Added, res.Removed = Changed(stored, local)
	}
	return res, nil
}

// Compact reclaims space left by removed entries
func (v *Vault) Compact() error {
	db, err := v.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Compact()
}

// StoreInfo describes the store file itself
type StoreInfo struct {
	ID       string
	Modified time.Time
}

// Info returns the store identifier and the time of the last write
func (v *Vault) Info() (StoreInfo, error) {
	db, err := v.open(false)
	if err != nil {
		return StoreInfo{}, err
	}
	defer db.Close()

	if ok, err := db.IsInitialized(); err != nil {
		return StoreInfo{}, err
	} else if !ok {
		return StoreInfo{}, ErrNotInitialized
	}

	id, err := db.GetOrCreateStoreID()
	if err != nil {
		return StoreInfo{}, err
	}
	modified, err := db.GetModified()
	if err != nil {
		return StoreInfo{}, err
	}
	return StoreInfo{ID: id, Modified: modified}, nil
}
