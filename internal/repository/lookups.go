package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
)

const (
	// DefaultRecentLimit is used when Recent is called with a non-positive limit.
	DefaultRecentLimit = 20
	// MaxRecentLimit caps how many entries Recent returns.
	MaxRecentLimit = 50
)

// LookupsRepository persists settled lookups.
type LookupsRepository struct {
	pool *pgxpool.Pool
}

const lookupColumns = `
    id,
    imdb_id,
    attempt_id,
    state,
    failure_kind,
    failure_message,
    record,
    started_at,
    elapsed_ms,
    created_at
`

// LookupCreateParams bundles the fields recorded for a settled lookup.
type LookupCreateParams struct {
	IMDbID         string
	AttemptID      string
	State          domain.RequestState
	FailureKind    domain.FailureKind
	FailureMessage string
	Record         *domain.MovieRecord
	StartedAt      time.Time
	Elapsed        time.Duration
}

// Create inserts a journal row and returns the stored entry.
func (r *LookupsRepository) Create(ctx context.Context, params LookupCreateParams) (domain.LookupEntry, error) {
	if params.State != domain.StateSucceeded && params.State != domain.StateFailed {
		return domain.LookupEntry{}, fmt.Errorf("create lookup: state %q is not settled", params.State)
	}

	var recordJSON []byte
	if params.Record != nil {
		var err error
		recordJSON, err = json.Marshal(params.Record)
		if err != nil {
			return domain.LookupEntry{}, fmt.Errorf("marshal record: %w", err)
		}
	}

	query := fmt.Sprintf(`
        INSERT INTO lookups (imdb_id, attempt_id, state, failure_kind, failure_message, record, started_at, elapsed_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING %s
    `, lookupColumns)

	row := r.pool.QueryRow(ctx, query,
		params.IMDbID,
		params.AttemptID,
		string(params.State),
		nullableString(string(params.FailureKind)),
		nullableString(params.FailureMessage),
		recordJSON,
		params.StartedAt.UTC(),
		params.Elapsed.Milliseconds(),
	)
	return scanLookup(row)
}

// GetByAttempt returns the entry written for one attempt.
func (r *LookupsRepository) GetByAttempt(ctx context.Context, attemptID string) (domain.LookupEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM lookups WHERE attempt_id = $1`, lookupColumns)
	entry, err := scanLookup(r.pool.QueryRow(ctx, query, attemptID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LookupEntry{}, ErrNotFound
	}
	return entry, err
}

// Recent returns the newest entries first. limit is clamped to
// [1, MaxRecentLimit]; non-positive values select DefaultRecentLimit.
func (r *LookupsRepository) Recent(ctx context.Context, limit int) ([]domain.LookupEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	query := fmt.Sprintf(`SELECT %s FROM lookups ORDER BY created_at DESC, id DESC LIMIT $1`, lookupColumns)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent lookups: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LookupEntry, 0, limit)
	for rows.Next() {
		entry, err := scanLookup(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent lookups: %w", err)
	}
	return entries, nil
}

func scanLookup(row pgx.Row) (domain.LookupEntry, error) {
	var (
		entry          domain.LookupEntry
		state          string
		failureKind    *string
		failureMessage *string
		recordJSON     []byte
		elapsedMillis  int64
	)
	err := row.Scan(
		&entry.ID,
		&entry.IMDbID,
		&entry.AttemptID,
		&state,
		&failureKind,
		&failureMessage,
		&recordJSON,
		&entry.StartedAt,
		&elapsedMillis,
		&entry.CreatedAt,
	)
	if err != nil {
		return domain.LookupEntry{}, err
	}

	entry.State = domain.RequestState(state)
	if failureKind != nil {
		entry.FailureKind = domain.FailureKind(*failureKind)
	}
	if failureMessage != nil {
		entry.FailureMessage = *failureMessage
	}
	entry.Elapsed = time.Duration(elapsedMillis) * time.Millisecond
	if len(recordJSON) > 0 {
		var record domain.MovieRecord
		if err := json.Unmarshal(recordJSON, &record); err != nil {
			return domain.LookupEntry{}, fmt.Errorf("decode stored record: %w", err)
		}
		entry.Record = &record
	}
	return entry, nil
}

func nullableString(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}
