// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSweepInProgress is returned when a follow-up sweep is already running
var ErrSweepInProgress = errors.New("follow-up sweep already in progress")

// ValidationError rejects a request before any side effect
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// GenerationError means the language model call failed or returned
// something that is not usable email content
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("error generating email content: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func NewGeneration(err error) error {
	return &GenerationError{Err: err}
}

// DeliveryError means the mail transport rejected the message. The
// record is left in send_failed with its generated content.
type DeliveryError struct {
	EmailID string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver email %s: %v", e.EmailID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func NewDelivery(emailID string, err error) error {
	return &DeliveryError{EmailID: emailID, Err: err}
}

// StoreError wraps a data-store failure
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStore(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// NotFoundError is returned by lookups that matched nothing
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// HTTPStatus maps an error to the status code API callers receive
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, ErrSweepInProgress):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
