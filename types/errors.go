package types

import (
	"errors"
	"fmt"
)

// NotFoundError reports an absent bundle, task, or tag.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource kind.
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidArgumentError reports caller input rejected before any mutation,
// such as an empty task-id list or a malformed status code.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(format string, args ...interface{}) *InvalidArgumentError {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

// InvalidBundleStateError reports a bundle whose state cannot support the
// requested operation, typically an empty member set.
type InvalidBundleStateError struct {
	BundleID int64
	Message  string
}

func (e *InvalidBundleStateError) Error() string {
	return fmt.Sprintf("bundle %d: %s", e.BundleID, e.Message)
}

// NewInvalidBundleStateError creates an InvalidBundleStateError.
func NewInvalidBundleStateError(bundleID int64, format string, args ...interface{}) *InvalidBundleStateError {
	return &InvalidBundleStateError{BundleID: bundleID, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidArgument reports whether err is (or wraps) an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// IsInvalidBundleState reports whether err is (or wraps) an InvalidBundleStateError.
func IsInvalidBundleState(err error) bool {
	var target *InvalidBundleStateError
	return errors.As(err, &target)
}
