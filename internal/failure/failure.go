// Package failure defines the error categories the room session layer
// reports. Every error that leaves a directory, transport or session call
// can be matched against one of them with errors.Is.
package failure

import "errors"

var (
	// ErrFetch marks a failed REST call: network error or non-success envelope.
	ErrFetch = errors.New("fetch failure")

	// ErrTransport marks a failed handshake or a protocol-level connection error.
	ErrTransport = errors.New("transport failure")

	// ErrValidation marks input rejected before any network attempt.
	ErrValidation = errors.New("validation failure")
)

// Fetch tags err as a fetch failure. A nil err stays nil.
func Fetch(err error) error {
	return tag(ErrFetch, err)
}

// Transport tags err as a transport failure. A nil err stays nil.
func Transport(err error) error {
	return tag(ErrTransport, err)
}

// Validation tags err as a validation failure. A nil err stays nil.
func Validation(err error) error {
	return tag(ErrValidation, err)
}

func tag(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return errors.Join(kind, err)
}

// Describe returns the user-facing text for err: the underlying cause
// without the category prefix that errors.Join adds.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if e == ErrFetch || e == ErrTransport || e == ErrValidation {
				continue
			}
			return Describe(e)
		}
	}
	return err.Error()
}
