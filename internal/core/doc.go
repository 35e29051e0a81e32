// Package core provides the named envelope vault behind the pcrypto CLI.
//
// Core operations include:
//   - Put: encrypt text and store it under a name
//   - Get: decrypt a stored entry with the parameters it was sealed with
//   - List/Remove: manage entries without a password
//   - Diff: compare a stored entry with local text
//   - Compact: reclaim space after removals
//
// Passwords come from PCRYPTO_PASSWORD, the OS keyring or a terminal prompt.
package core
