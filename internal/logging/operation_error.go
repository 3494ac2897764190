package logging

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// OperationError records the operation that failed, the request it served
// and, for retried operations, how many attempts were made.
type OperationError struct {
	Operation string
	RequestID string
	Attempts  int
	Err       error
}

func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	var meta []string
	if e.RequestID != "" {
		meta = append(meta, "request_id="+e.RequestID)
	}
	if e.Attempts > 1 {
		meta = append(meta, fmt.Sprintf("attempts=%d", e.Attempts))
	}
	if len(meta) == 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Operation, strings.Join(meta, ", "), e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewOperationError wraps err with the operation and request it belongs to.
// It returns nil for a nil err.
func NewOperationError(operation, requestID string, err error) error {
	return NewRetriedError(operation, requestID, 1, err)
}

// NewRetriedError is NewOperationError for an operation that ran attempts times.
func NewRetriedError(operation, requestID string, attempts int, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, RequestID: requestID, Attempts: attempts, Err: err}
}

// Fields describes err for a log line. Operation metadata is included when
// err wraps an OperationError.
func Fields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		return fields
	}
	fields = append(fields, zap.String("operation", opErr.Operation))
	if opErr.RequestID != "" {
		fields = append(fields, zap.String("request_id", opErr.RequestID))
	}
	if opErr.Attempts > 1 {
		fields = append(fields, zap.Int("attempts", opErr.Attempts))
	}
	return fields
}
