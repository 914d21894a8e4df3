package normalizer

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse matches any *MalformedResponseError via errors.Is.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrEmptyResult means the payload parsed but held nothing usable.
	ErrEmptyResult = errors.New("response contained no usable result")
)

// MalformedResponseError carries the raw payload that could not be parsed.
type MalformedResponseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func malformed(raw, reason string, err error) error {
	return &MalformedResponseError{Raw: raw, Reason: reason, Err: err}
}
