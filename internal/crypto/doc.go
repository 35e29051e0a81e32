// Package crypto provides password-based authenticated encryption of text.
//
// Encryption composes four steps:
//   - the password is encoded with a charset (default utf-8) and hashed
//     (default SHA-256); the digest is used directly as the cipher key
//   - a fresh random nonce (default 128 bits) is drawn for every call
//   - the charset-encoded text is sealed with an AEAD (default AES-GCM)
//   - nonce || ciphertext || tag is rendered as uppercase hex
//
// The nonce length is not stored in the envelope. Both sides must agree on
// it, along with the charset, hash and cipher.
//
// The key derivation is a single hash, not a slow password KDF, so it offers
// no resistance to guessing weak passwords. Keys are derived again on every
// call and zeroed afterwards; nothing is cached.
//
// Primitives are reached through a Provider so tests can substitute a
// deterministic random source.
package crypto
