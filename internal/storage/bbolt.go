package storage

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // version, timestamps, store ID
	EntriesBucket = []byte("entries") // name -> JSON Entry
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigStoreID  = []byte("store_id")
)

const formatVersion = "1"

var (
	ErrNotFound       = errors.New("entry not found")
	ErrNotInitialized = errors.New("store not initialized")
	ErrEmptyName      = errors.New("entry name is empty")
)

// Storage is a BBolt-backed envelope store
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a store file
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the file the store lives in
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket layout. Calling it on an initialized store is a no-op.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, EntriesBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte(formatVersion)); err != nil {
			return err
		}

		created, _ := time.Now().UTC().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// GetOrCreateStoreID returns the random identifier of this store, creating it on first use
func (s *Storage) GetOrCreateStoreID() (string, error) {
	var id string
	err := s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		if data := config.Get(ConfigStoreID); data != nil {
			id = string(data)
			return nil
		}

		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("failed to generate store ID: %w", err)
		}
		id = hex.EncodeToString(b)
		return config.Put(ConfigStoreID, []byte(id))
	})
	return id, err
}

// Put writes an entry, keeping the original creation time when the name already exists
func (s *Storage) Put(e Entry) error {
	if e.Name == "" {
		return ErrEmptyName
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(EntriesBucket)
		if entries == nil {
			return ErrNotInitialized
		}

		now := time.Now().UTC()
		e.Created, e.Modified = now, now
		if prev := entries.Get([]byte(e.Name)); prev != nil {
			var old Entry
			if err := json.Unmarshal(prev, &old); err == nil {
				e.Created = old.Created
			}
		}

		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode entry: %w", err)
		}
		if err := entries.Put([]byte(e.Name), data); err != nil {
			return err
		}
		return touch(tx, now)
	})
}

// Get returns a single entry
func (s *Storage) Get(name string) (Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		entries := tx.Bucket(EntriesBucket)
		if entries == nil {
			return ErrNotInitialized
		}
		data := entries.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return json.Unmarshal(data, &e)
	})
	return e, err
}

// Delete removes the named entries in one transaction. If any name is
// unknown nothing is removed.
func (s *Storage) Delete(names ...string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(EntriesBucket)
		if entries == nil {
			return ErrNotInitialized
		}
		for _, name := range names {
			if entries.Get([]byte(name)) == nil {
				return fmt.Errorf("%w: %s", ErrNotFound, name)
			}
		}
		for _, name := range names {
			if err := entries.Delete([]byte(name)); err != nil {
				return fmt.Errorf("failed to remove %s: %w", name, err)
			}
		}
		return touch(tx, time.Now().UTC())
	})
}

// List returns all entries ordered by name
func (s *Storage) List() ([]Entry, error) {
	var list []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		entries := tx.Bucket(EntriesBucket)
		if entries == nil {
			return nil
		}
		return entries.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("corrupt entry %q: %w", k, err)
			}
			list = append(list, e)
			return nil
		})
	})
	return list, err
}

func touch(tx *bolt.Tx, now time.Time) error {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return ErrNotInitialized
	}
	modified, _ := now.MarshalBinary()
	return config.Put(ConfigModified, modified)
}

// Compact rewrites the database into a fresh file, reclaiming space left by deleted entries.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	if err := bolt.Compact(dst, s.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	s.db, err = bolt.Open(srcPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
