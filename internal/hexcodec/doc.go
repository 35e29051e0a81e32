// Package hexcodec converts envelopes to and from their wire form.
//
// The wire form is uppercase hexadecimal, two characters per byte, with no
// separators and no length prefix. Decoding accepts either case but rejects
// odd-length input and non-hex characters instead of producing garbage bytes.
package hexcodec
