// Package storage provides the BBolt database behind named envelopes.
//
// Database structure uses two buckets:
//   - config: format version, timestamps and a random store ID
//   - entries: one JSON Entry per name
//
// Entries hold hex envelopes and the cipher parameters used to produce them,
// so listing works without a password. Plaintext, passwords and keys are
// never written.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
