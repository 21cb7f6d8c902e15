package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-lookup/internal/logger"
	"github.com/Clark-Hu/movie-lookup/internal/lookup"
)

const journalWriteTimeout = 2 * time.Second

// Journal records every settled lookup. Write failures are logged and never
// reach the controller.
type Journal struct {
	lookups *LookupsRepository
	logger  *zap.SugaredLogger
}

// NewJournal returns a lookup.Observer writing to lookups.
func NewJournal(lookups *LookupsRepository, log *zap.SugaredLogger) *Journal {
	return &Journal{lookups: lookups, logger: logger.OrNop(log)}
}

// Observe implements lookup.Observer.
func (j *Journal) Observe(ctx context.Context, o lookup.Outcome) {
	ctx, cancel := context.WithTimeout(ctx, journalWriteTimeout)
	defer cancel()

	params := LookupCreateParams{
		IMDbID:    o.ID,
		AttemptID: o.AttemptID,
		State:     o.State,
		Record:    o.Record,
		StartedAt: o.StartedAt,
		Elapsed:   o.Elapsed,
	}
	if o.Failure != nil {
		params.FailureKind = o.Failure.Kind
		params.FailureMessage = o.Failure.Message
	}

	if _, err := j.lookups.Create(ctx, params); err != nil {
		j.logger.Errorw("journal: record lookup failed", "id", o.ID, "attempt", o.AttemptID, "error", err)
	}
}
