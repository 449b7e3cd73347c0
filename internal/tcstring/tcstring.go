package tcstring

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Alphabet is the URL-safe base64 digit ordering used by TC strings.
// A character's index is its 6-bit value.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const (
	// createdOffset and createdLen locate the Created field: characters 1..6.
	createdOffset = 1
	createdLen    = 6

	// MinLength is the shortest string that still carries a Created field.
	MinLength = createdOffset + createdLen

	bitsPerChar = 6
)

// ErrMalformed is returned when a TC string cannot carry a valid Created field.
var ErrMalformed = errors.New("tcstring: malformed")

// DecodeDeciseconds interprets s as a big-endian base-64 integer over Alphabet.
//
// Any character outside Alphabet fails the decode instead of
// contributing a bogus digit to the result.
func DecodeDeciseconds(s string) (int64, error) {
	var acc int64
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(Alphabet, s[i])
		if v < 0 {
			return 0, fmt.Errorf("%w: invalid character %q at position %d", ErrMalformed, s[i], i)
		}
		acc = acc<<bitsPerChar | int64(v)
	}
	return acc, nil
}

// EncodeDeciseconds renders ds as exactly six Alphabet digits.
// Values that need more than 36 bits are truncated to the low 36.
func EncodeDeciseconds(ds int64) string {
	var buf [createdLen]byte
	for i := createdLen - 1; i >= 0; i-- {
		buf[i] = Alphabet[ds&0x3f]
		ds >>= bitsPerChar
	}
	return string(buf[:])
}

// CreatedField returns the raw six-character Created field of tc.
func CreatedField(tc string) (string, error) {
	if len(tc) < MinLength {
		return "", fmt.Errorf("%w: length %d, need at least %d", ErrMalformed, len(tc), MinLength)
	}
	return tc[createdOffset:MinLength], nil
}

// CreatedMillis decodes the Created field of tc as milliseconds since the Unix epoch.
func CreatedMillis(tc string) (int64, error) {
	field, err := CreatedField(tc)
	if err != nil {
		return 0, err
	}
	ds, err := DecodeDeciseconds(field)
	if err != nil {
		return 0, err
	}
	return ds * 100, nil
}

// CreatedAt is CreatedMillis as a time.Time in UTC.
func CreatedAt(tc string) (time.Time, error) {
	ms, err := CreatedMillis(tc)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// WithCreated returns a TC string whose Created field encodes t.
// The version character and any trailing payload are preserved; a string
// shorter than MinLength is padded with 'A'.
func WithCreated(tc string, t time.Time) string {
	if len(tc) < MinLength {
		tc += strings.Repeat("A", MinLength-len(tc))
	}
	field := EncodeDeciseconds(t.UnixMilli() / 100)
	return tc[:createdOffset] + field + tc[MinLength:]
}
