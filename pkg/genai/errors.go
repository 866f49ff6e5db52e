package genai

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by errors reporting out-of-domain caller
// values (e.g. a negative thinking budget).
var ErrInvalidArgument = errors.New("invalid argument")

// TransportError is a failed HTTP exchange: a non-2xx status or a
// network-level failure. Transport errors are retried by the executor up
// to the configured budget; only the last one is surfaced.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is a 2xx response whose body or headers violate the
// remote contract (unparseable JSON, missing upload URL, missing file
// URI, missing embedding values). Never retried.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol violation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// MissingCredentialError means no usable authentication path exists for
// the request.
type MissingCredentialError struct {
	Reason string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: %s", e.Reason)
}

// UnsupportedMediaTypeError is returned when an attachment declares a
// media type the remote API is known to reject. The attachment is never
// transmitted.
type UnsupportedMediaTypeError struct {
	MediaType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("unsupported media type: %q", e.MediaType)
}

// InvalidFileDescriptorError is returned when a file reference lacks a
// URI or media type.
type InvalidFileDescriptorError struct {
	Missing string
}

func (e *InvalidFileDescriptorError) Error() string {
	return fmt.Sprintf("invalid file descriptor: missing %s", e.Missing)
}
