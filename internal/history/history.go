package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dverna/casaflow-core/internal/entity"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 200
)

// Entry is one recorded state change.
type Entry struct {
	ID         int64
	EntityID   string
	State      string
	Attributes entity.Attributes
	RecordedAt time.Time
}

// Repository records entity state changes into the local SQLite
// database, giving the dashboard a history the hub connection does not
// have to be up to answer.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a state history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *Repository: Repository instance ready for use
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RecordState inserts a history entry for a snapshot. Attributes are
// stored as JSON alongside the primary state value.
//
// Implements the session's StateSink; it runs on every accepted state
// change and must stay cheap.
func (r *Repository) RecordState(ctx context.Context, snap *entity.Snapshot) error {
	if snap == nil || snap.EntityID == "" {
		return fmt.Errorf("history: entity id is required")
	}

	attrs, err := json.Marshal(snap.Attributes)
	if err != nil {
		return fmt.Errorf("history: marshalling attributes: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO state_history (entity_id, state, attributes) VALUES (?, ?, ?)",
		snap.EntityID,
		snap.State,
		string(attrs),
	)
	if err != nil {
		return fmt.Errorf("history: inserting entry: %w", err)
	}

	return nil
}

// GetHistory returns recent entries for an entity, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - entityID: Entity identifier
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: History entries ordered by recorded_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *Repository) GetHistory(ctx context.Context, entityID string, limit int) ([]Entry, error) {
	if entityID == "" {
		return nil, fmt.Errorf("history: entity id is required")
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_id, state, attributes, recorded_at
		 FROM state_history
		 WHERE entity_id = ?
		 ORDER BY recorded_at DESC
		 LIMIT ?`,
		entityID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: querying entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var attrsJSON string
		var recordedAt string

		if err := rows.Scan(&e.ID, &e.EntityID, &e.State, &attrsJSON, &recordedAt); err != nil {
			return nil, fmt.Errorf("history: scanning entry: %w", err)
		}

		if err := json.Unmarshal([]byte(attrsJSON), &e.Attributes); err != nil {
			return nil, fmt.Errorf("history: unmarshalling attributes: %w", err)
		}

		timestamp, err := parseTimestamp(recordedAt)
		if err != nil {
			return nil, err
		}
		e.RecordedAt = timestamp

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterating entries: %w", err)
	}

	return entries, nil
}

// Prune deletes entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Duration to retain
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("history: olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM state_history WHERE recorded_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("history: deleting entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// RunPruner prunes on an interval until the context is cancelled.
// Intended to run as its own goroutine from main.
func (r *Repository) RunPruner(ctx context.Context, retention time.Duration, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			//nolint:errcheck // Pruning is housekeeping; the next tick retries
			r.Prune(ctx, retention)
		}
	}
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("history: recorded_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("history: parsing recorded_at: %w", err)
}
