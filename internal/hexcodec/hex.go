package hexcodec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedHex = errors.New("malformed hex")

// Encode renders b as uppercase hex
func Encode(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// Decode parses hex text produced by Encode
func Decode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrMalformedHex, len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		var invalid hex.InvalidByteError
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("%w: invalid character %q", ErrMalformedHex, byte(invalid))
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}

	return b, nil
}
