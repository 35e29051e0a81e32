package storage

import "time"

// Entry is a stored envelope together with the parameters needed to open it.
// The password is never part of an entry.
type Entry struct {
	Name          string    `json:"name"`
	Envelope      string    `json:"envelope"`
	Algorithm     string    `json:"algorithm"`
	HashAlgorithm string    `json:"hashAlgorithm"`
	Charset       string    `json:"charset"`
	NonceSize     int       `json:"nonceSize"`
	Created       time.Time `json:"created"`
	Modified      time.Time `json:"modified"`
}
