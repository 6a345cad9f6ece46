package subtitle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// Encoding selects how raw subtitle bytes become text: either EncodingAuto
// or the name of a fixed text encoding such as "UTF-8" or "windows-1256".
type Encoding string

const (
	EncodingAuto Encoding = "auto"
	EncodingUTF8 Encoding = "UTF-8"

	// legacy Arabic-script codepage tried when UTF-8 fails in auto mode
	DefaultFallback Encoding = "windows-1256"
)

// IsAuto reports whether e requests the UTF-8 then fallback chain.
func (e Encoding) IsAuto() bool {
	return strings.EqualFold(strings.TrimSpace(string(e)), string(EncodingAuto))
}

func (e Encoding) isUTF8() bool {
	switch strings.ToLower(strings.TrimSpace(string(e))) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}

// Validate checks that e is auto or a known encoding name.
func (e Encoding) Validate() error {
	if e.IsAuto() || e.isUTF8() {
		return nil
	}
	_, err := lookupEncoding(e)
	return err
}

// decode converts data to text. UTF-8 is strict: any invalid sequence is a
// decode failure so that auto mode can move on to the fallback.
func decode(data []byte, e Encoding) (string, error) {
	if e.isUTF8() {
		if !utf8.Valid(data) {
			return "", fmt.Errorf(
				"%w: invalid UTF-8 sequence at byte %d",
				ErrDecodeFailed,
				invalidUTF8Offset(data),
			)
		}
		return string(data), nil
	}

	enc, err := lookupEncoding(e)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecodeFailed, e, err)
	}
	return string(out), nil
}

func lookupEncoding(e Encoding) (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(string(e)))
	if name == "windows-1256" || name == "cp1256" {
		return charmap.Windows1256, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, string(e))
	}
	return enc, nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}
