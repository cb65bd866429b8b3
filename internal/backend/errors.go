package backend

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrEmptyCookie = errors.New("no cookie file provided")
)

const GenericFailureMsg = "operation failed"

// OperationError is a response carrying success=false.
type OperationError struct {
	Op      string
	Status  int
	Message string
}

func (e *OperationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, GenericFailureMsg)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// StatusError is a non-2xx response without a usable JSON body.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: server returned status %d", e.Op, e.Status)
}
