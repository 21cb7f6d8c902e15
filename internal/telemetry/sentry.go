package telemetry

import (
	"context"
	"time"

	sentrygo "github.com/getsentry/sentry-go"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
	"github.com/Clark-Hu/movie-lookup/internal/lookup"
)

// FlushTime bounds how long shutdown waits for buffered events.
const FlushTime = 2 * time.Second

// Init configures the global Sentry client. An empty DSN leaves Sentry disabled.
func Init(dsn, env string) error {
	return sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		AttachStacktrace: true,
	})
}

// SentryReporter forwards unexpected lookup failures to Sentry. Transport
// errors become exceptions, timeouts are recorded as warnings, not-found
// answers are expected and ignored.
type SentryReporter struct {
	hub *sentrygo.Hub
}

// NewSentryReporter reports through hub, or the current hub when nil.
func NewSentryReporter(hub *sentrygo.Hub) *SentryReporter {
	if hub == nil {
		hub = sentrygo.CurrentHub()
	}
	return &SentryReporter{hub: hub}
}

// Observe implements lookup.Observer.
func (r *SentryReporter) Observe(_ context.Context, o lookup.Outcome) {
	if o.Failure == nil {
		return
	}
	switch o.Failure.Kind {
	case domain.FailureTransportError, domain.FailureTimeout:
	default:
		return
	}

	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentrygo.Scope) {
		scope.SetTag("imdb_id", o.ID)
		scope.SetTag("attempt_id", o.AttemptID)
		scope.SetTag("failure_kind", string(o.Failure.Kind))
		scope.SetExtra("elapsed_ms", o.Elapsed.Milliseconds())

		if o.Failure.Kind == domain.FailureTimeout {
			scope.SetLevel(sentrygo.LevelWarning)
			hub.CaptureMessage("lookup timed out: " + o.ID)
			return
		}
		var err error = o.Failure
		if o.Failure.Err != nil {
			err = o.Failure.Err
		}
		hub.CaptureException(err)
	})
}
