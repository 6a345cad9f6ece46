package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEntries means decoding worked but no cue could be extracted.
	ErrNoEntries = errors.New("no valid subtitle entries found")
	// ErrDecodeFailed means the bytes could not be turned into a usable track
	// with any of the attempted encodings.
	ErrDecodeFailed = errors.New("failed to decode subtitle")
	// ErrMalformedTimestamp is local to a single time line; the parser never
	// returns it from Parse.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrUnknownEncoding    = errors.New("unknown text encoding")
)

// Attempt records why one encoding was rejected
type Attempt struct {
	Encoding string
	Err      error
}

// DecodeError is returned when every encoding of an auto chain failed.
type DecodeError struct {
	Attempts []Attempt
}

func (e *DecodeError) Error() string {
	names := make([]string, 0, len(e.Attempts))
	reasons := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Encoding)
		reasons = append(reasons, fmt.Sprintf("%s: %v", a.Encoding, a.Err))
	}
	return fmt.Sprintf(
		"failed to parse subtitle with both %s (%s)",
		strings.Join(names, " and "),
		strings.Join(reasons, "; "),
	)
}

// Encodings lists the encodings that were tried, in order.
func (e *DecodeError) Encodings() []string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Encoding)
	}
	return names
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailed
}

func (e *DecodeError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
