package crypto

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// lookupCharset resolves a WHATWG encoding label such as "utf-8" or "windows-1252"
func lookupCharset(name string) (encoding.Encoding, string, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedCharset, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = name
	}
	// The replacement encoding decodes everything to U+FFFD
	if enc == encoding.Replacement || canonical == "replacement" {
		return nil, "", fmt.Errorf("%w: %q cannot round-trip text", ErrUnsupportedCharset, name)
	}
	return enc, canonical, nil
}

func encodeText(enc encoding.Encoding, s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrMalformedInput)
	}
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: text is not representable in charset: %v", ErrMalformedInput, err)
	}
	return b, nil
}

func decodeText(enc encoding.Encoding, b []byte) (string, error) {
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(s), nil
}
