// Package git checks whether a plaintext file sits unprotected in a git work tree.
//
// A file compared against a stored envelope is usually a secret in clear text;
// it should be ignored by git and never tracked.
package git
