package orders

import "errors"

var (
	// ErrNotFound is returned by Finder implementations when no order has the id.
	ErrNotFound = errors.New("order not found")
	// ErrInternal matches every storage, connectivity or lock failure.
	ErrInternal = errors.New("internal repository error")
)

// InternalError is what storage adapters return on failure. Its message is
// always ErrInternal's; the driver cause is kept for logging only.
type InternalError struct {
	Op  string
	Err error
}

// NewInternalError wraps a storage failure raised during op.
func NewInternalError(op string, err error) *InternalError {
	return &InternalError{Op: op, Err: err}
}

func (e *InternalError) Error() string { return ErrInternal.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) Is(target error) bool { return target == ErrInternal }

// PayloadFormatError reports a webhook payload that does not decode into an order.
type PayloadFormatError struct {
	Message string
}

func (e *PayloadFormatError) Error() string {
	return "payload format error: " + e.Message
}
