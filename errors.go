package areacodes

import (
	"errors"
	"fmt"
)

// ErrorKind classifies dataset failures.
type ErrorKind int

const (
	// KindSourceNotFound: a per-country source does not exist. Recoverable;
	// Catalog.Codes falls back to filtering the full dataset.
	KindSourceNotFound ErrorKind = iota + 1
	// KindNoSourcesFound: the dataset directory holds no sources at all.
	KindNoSourcesFound
	// KindInvalidData: a source could not be read or holds unusable records.
	KindInvalidData
	// KindDecodingFailed: a source was read but is not a valid JSON record array.
	KindDecodingFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindSourceNotFound:
		return "source not found"
	case KindNoSourcesFound:
		return "no sources found"
	case KindInvalidData:
		return "invalid data"
	case KindDecodingFailed:
		return "decoding failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrSourceNotFound = &Error{Kind: KindSourceNotFound}
	ErrNoSourcesFound = &Error{Kind: KindNoSourcesFound}
	ErrInvalidData    = &Error{Kind: KindInvalidData}
	ErrDecodingFailed = &Error{Kind: KindDecodingFailed}
)

// Error is a dataset failure carrying the offending source and a reason.
type Error struct {
	Kind   ErrorKind
	Source string // Source name (file name or country identifier); may be empty
	Reason string // Human-readable cause
	Err    error  // Underlying error, if any
}

func (e *Error) Error() string {
	msg := "areacodes: " + e.Kind.String()
	if e.Source != "" {
		msg += ": " + e.Source
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so that errors.Is(err, ErrSourceNotFound) works for any
// source-not-found error regardless of payload.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the ErrorKind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func sourceNotFound(id string) error {
	return &Error{Kind: KindSourceNotFound, Source: id, Reason: "no source for this identifier"}
}

func noSourcesFound(dir string) error {
	return &Error{Kind: KindNoSourcesFound, Source: dir}
}

func invalidData(source string, err error) error {
	return &Error{Kind: KindInvalidData, Source: source, Reason: err.Error(), Err: err}
}

func decodingFailed(source string, err error) error {
	return &Error{Kind: KindDecodingFailed, Source: source, Reason: err.Error(), Err: err}
}
