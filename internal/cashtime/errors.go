package cashtime

import (
	"errors"
	"fmt"
)

// ErrMissingSecretKey marks a client constructed without credentials.
var ErrMissingSecretKey = errors.New("CASHTIME_SECRET_KEY is not set and no secret key was provided")

// ErrAuthentication marks a 403 from Cashtime: the secret key was rejected.
var ErrAuthentication = errors.New("cashtime rejected the secret key")

// ErrInvalidPayload marks a 400 from Cashtime: the transaction payload was rejected.
var ErrInvalidPayload = errors.New("cashtime rejected the transaction payload")

// ValidationError reports a required request field that was missing, before
// any network call is attempted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// APIError surfaces non-successful HTTP responses from Cashtime that do not
// map to a more specific error.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cashtime api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ConnectionError wraps transport-level failures reaching the Cashtime API.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cashtime connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
