// Package storeerr handles document store driver errors.
//
// It classifies errors coming from the MongoDB driver and converts
// them into application HTTP errors (e.g. a missing document becomes
// a 404, a timed out command becomes a 503).
package storeerr

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Code is the application-level category of a store error.
type Code string

const (
	// Other is any error we do not recognise.
	Other Code = "other"

	// NotFound means a single-document lookup matched nothing.
	NotFound Code = "not_found"

	// Timeout means the command or the request context ran out of time.
	Timeout Code = "timeout"

	// Network means the driver could not talk to the server.
	Network Code = "network"

	// Canceled means the request went away before the store answered.
	Canceled Code = "canceled"

	// InvalidQuery means the server rejected the filter (e.g. a bad $regex).
	InvalidQuery Code = "invalid_query"
)

// badValue is the server error code for malformed query operators.
const badValue = 2

// Error is a classified store error. It keeps the driver error for
// Unwrap() and logging, and the collection the command targeted.
type Error struct {
	Code       Code
	Collection string
	Message    string
	driverErr  error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("store %s on %s: %s", e.Code, e.Collection, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// Wrap classifies err and annotates it with the collection name.
// A nil err stays nil and an already classified error is returned as is.
func Wrap(err error, collection string) error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}

	return &Error{
		Code:       Classify(err),
		Collection: collection,
		Message:    err.Error(),
		driverErr:  err,
	}
}

// Classify maps a raw driver or context error to a Code.
func Classify(err error) Code {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}

	var cmdErr mongo.CommandError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return NotFound
	case errors.Is(err, context.Canceled):
		return Canceled
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return Timeout
	case mongo.IsNetworkError(err):
		return Network
	case errors.As(err, &cmdErr) && cmdErr.Code == badValue:
		return InvalidQuery
	}

	return Other
}

// IsNotFound reports whether err means "no such document".
func IsNotFound(err error) bool {
	return err != nil && Classify(err) == NotFound
}
