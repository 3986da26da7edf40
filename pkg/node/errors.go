package node

import (
	"fmt"
)

// ErrorType classifies node errors for appropriate handling.
type ErrorType string

const (
	// ErrorTypeMissingParam indicates a required parameter was absent (user input)
	ErrorTypeMissingParam ErrorType = "missing_parameter"

	// ErrorTypeUnsupportedOperation indicates an unknown operation name (config error)
	ErrorTypeUnsupportedOperation ErrorType = "unsupported_operation"

	// ErrorTypeAuth indicates authentication or authorization failure
	ErrorTypeAuth ErrorType = "auth_error"

	// ErrorTypeNotFound indicates the remote resource does not exist
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeVendor indicates a vendor SDK failure (network, quota, server)
	ErrorTypeVendor ErrorType = "vendor_error"

	// ErrorTypeTransform indicates a response transform failure
	ErrorTypeTransform ErrorType = "transform_error"
)

// Error represents a node execution error with classification.
type Error struct {
	// Type classifies the error
	Type ErrorType

	// Message is the human-readable error description
	Message string

	// Operation is the operation that produced the error, when known
	Operation string

	// ItemIndex is the input item that triggered the error, -1 when not
	// item-scoped
	ItemIndex int

	// SuggestText provides guidance on how to resolve the error
	SuggestText string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Operation != "" {
		msg = fmt.Sprintf("%s [operation: %s]", msg, e.Operation)
	}
	if e.ItemIndex >= 0 {
		msg = fmt.Sprintf("%s [item %d]", msg, e.ItemIndex)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether retrying the invocation could succeed.
// Parameter and dispatch errors never are; vendor failures might be, but
// retry is the vendor client's job, so the host should not loop either.
func (e *Error) IsRetryable() bool {
	return false
}

// UserMessage returns a user-friendly message without the wrapped cause.
func (e *Error) UserMessage() string {
	return e.Message
}

// Suggestion returns actionable guidance for resolving the error.
func (e *Error) Suggestion() string {
	return e.SuggestText
}

// WithItem returns a copy of the error scoped to the given input item index.
func (e *Error) WithItem(index int) *Error {
	clone := *e
	clone.ItemIndex = index
	return &clone
}

// NewMissingParamError reports an absent required field, naming the field.
func NewMissingParamError(field string) *Error {
	return &Error{
		Type:        ErrorTypeMissingParam,
		Message:     fmt.Sprintf("required parameter %q is missing", field),
		ItemIndex:   -1,
		SuggestText: fmt.Sprintf("Set the %q parameter on this step", field),
	}
}

// NewUnsupportedOperationError reports an unknown operation name, naming
// exactly the offending string.
func NewUnsupportedOperationError(node, operation string) *Error {
	return &Error{
		Type:        ErrorTypeUnsupportedOperation,
		Message:     fmt.Sprintf("operation %q is not supported by node %q", operation, node),
		Operation:   operation,
		ItemIndex:   -1,
		SuggestText: "Check the operation name against the node's operation list",
	}
}

// NewVendorError wraps a vendor SDK failure with an operation-name label.
func NewVendorError(operation string, cause error) *Error {
	return &Error{
		Type:      ErrorTypeVendor,
		Message:   fmt.Sprintf("%s request failed", operation),
		Operation: operation,
		ItemIndex: -1,
		Cause:     cause,
	}
}

// NewTransformError reports a jq response transform failure.
func NewTransformError(expression string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeTransform,
		Message:     fmt.Sprintf("response transform failed: %s", expression),
		ItemIndex:   -1,
		Cause:       cause,
		SuggestText: "Check the jq expression syntax against the response structure",
	}
}
