package disksdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	ErrNoToken  = errors.New("disk: access token missing")
	ErrNoFolder = errors.New("disk: remote folder missing")

	// ErrUnauthorized means the backend rejected the access token.
	ErrUnauthorized = errors.New("disk: unauthorized")

	// ErrFileNotFound means the local file to upload does not exist.
	ErrFileNotFound = errors.New("disk: local file not found")
)

// apiErrorBody is the error payload the Disk API returns on failures.
type apiErrorBody struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	ErrorCode   string `json:"error"`
}

// APIError is a backend-reported failure other than an auth failure. It
// carries the backend message verbatim.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("disk api: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("disk api: %s: %s", e.Op, e.Message)
}

// TransportError is a network-level failure: no response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("disk transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newAPIError(resp *req.Response, op string) *APIError {
	var body apiErrorBody
	_ = jsonUnmarshal(resp.Bytes(), &body)
	return &APIError{
		Op:      op,
		Status:  resp.StatusCode,
		Message: body.Message,
	}
}

// handleAPIError translates one request outcome into the error taxonomy:
// transport failure, auth failure, or a generic backend failure.
func handleAPIError(resp *req.Response, requestErr error, op string) error {
	if requestErr != nil {
		return &TransportError{Op: op, Err: requestErr}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if resp.IsErrorState() {
		return newAPIError(resp, op)
	}
	return nil
}
