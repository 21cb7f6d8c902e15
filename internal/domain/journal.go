package domain

import "time"

// LookupEntry is a settled lookup as stored in the journal.
type LookupEntry struct {
	ID             int64
	IMDbID         string
	AttemptID      string
	State          RequestState
	FailureKind    FailureKind
	FailureMessage string
	Record         *MovieRecord
	StartedAt      time.Time
	Elapsed        time.Duration
	CreatedAt      time.Time
}
