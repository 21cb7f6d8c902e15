package lookup

import (
	"errors"
	"fmt"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
)

// DefaultNotFoundMessage is used when OMDb reports no match without an Error string.
const DefaultNotFoundMessage = "Movie not found"

const (
	invalidInputMessage   = "Please enter a valid IMDb ID."
	timeoutMessage        = "The request took too long to respond."
	transportErrorMessage = "There was a problem querying the movie API."
)

// ErrClosed is returned by Submit once the controller has been closed.
var ErrClosed = errors.New("lookup: controller closed")

// Failure is the reason a lookup ended without a record. It is also the
// error Lookup and Submit return for blank input.
type Failure struct {
	Kind    domain.FailureKind `json:"kind"`
	Message string             `json:"message"`
	Err     error              `json:"-"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("lookup failure: kind=%s message=%s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Kind extracts the failure kind from err, or "" when err is not a *Failure.
func Kind(err error) domain.FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func invalidInput() *Failure {
	return &Failure{Kind: domain.FailureInvalidInput, Message: invalidInputMessage}
}

func notFound(message string) *Failure {
	if message == "" {
		message = DefaultNotFoundMessage
	}
	return &Failure{Kind: domain.FailureNotFound, Message: message}
}

func timedOut(err error) *Failure {
	return &Failure{Kind: domain.FailureTimeout, Message: timeoutMessage, Err: err}
}

func transportError(err error) *Failure {
	return &Failure{Kind: domain.FailureTransportError, Message: transportErrorMessage, Err: err}
}

// Alert is the blocking notification shown for a failure.
type Alert struct {
	Kind     domain.FailureKind `json:"kind"`
	Title    string             `json:"title"`
	Message  string             `json:"message"`
	LookupID string             `json:"lookupId,omitempty"`
}

func alertFor(f *Failure, id string) Alert {
	title := "Error"
	switch f.Kind {
	case domain.FailureNotFound:
		title = "Not found"
	case domain.FailureTimeout:
		title = "Timeout"
	}
	return Alert{Kind: f.Kind, Title: title, Message: f.Message, LookupID: id}
}
