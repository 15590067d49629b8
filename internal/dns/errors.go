package dns

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an OperationError.
type ErrorKind int

const (
	// ZoneError is returned by zone create/delete calls on an unexpected status.
	ZoneError ErrorKind = iota
	// DomainError is returned by record upsert/delete calls on an unexpected status.
	DomainError
	// TransportError means no usable response was received.
	TransportError
)

func (k ErrorKind) String() string {
	switch k {
	case ZoneError:
		return "ZoneError"
	case DomainError:
		return "DomainError"
	case TransportError:
		return "TransportError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// OperationError is the failure returned by a Provider call.
type OperationError struct {
	Kind       ErrorKind
	Op         string // e.g. "Add zone"
	StatusCode int    // 0 for TransportError
	Body       string
	Err        error // underlying cause for TransportError
}

func (e *OperationError) Error() string {
	if e.Kind == TransportError {
		return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s operation failed with status code %d, %s", e.Op, e.StatusCode, e.Body)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of the OperationError wrapped in err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind, true
	}
	return 0, false
}
