package lookup

import (
	"context"
	"time"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
)

// Snapshot is the read-only view of the controller state. Record is shared
// between snapshots and must not be modified by readers.
type Snapshot struct {
	State     domain.RequestState `json:"state"`
	ID        string              `json:"id,omitempty"`
	AttemptID string              `json:"attemptId,omitempty"`
	Record    *domain.MovieRecord `json:"record,omitempty"`
	Failure   *Failure            `json:"failure,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Event is delivered to subscribers. Exactly one of Snapshot and Alert is set.
type Event struct {
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Alert    *Alert    `json:"alert,omitempty"`
}

// Outcome describes one settled lookup.
type Outcome struct {
	ID        string
	AttemptID string
	State     domain.RequestState
	Record    *domain.MovieRecord
	Failure   *Failure
	StartedAt time.Time
	Elapsed   time.Duration
}

// Observer is notified once per settled lookup, after the snapshot has been
// published. Observers must not block for long; they run on the lookup flow.
type Observer interface {
	Observe(ctx context.Context, o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, o Outcome)

func (f ObserverFunc) Observe(ctx context.Context, o Outcome) { f(ctx, o) }
