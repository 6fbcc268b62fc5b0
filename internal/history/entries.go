package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome recorded for a pipeline item.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// timestampLayout is fixed width so recorded_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const entryColumns = "id, run_id, item_index, source, operation, status, error_kind, error_message, result_json, duration_ms, recorded_at"

// Entry is one recorded item outcome.
type Entry struct {
	ID         int64
	RunID      string
	ItemIndex  int
	Source     string
	Operation  string
	Status     Status
	ErrorKind  string
	Error      string
	Result     json.RawMessage
	Duration   time.Duration
	RecordedAt time.Time
}

// Stats summarizes the stored history.
type Stats struct {
	Entries int
	Runs    int
	Failed  int
	Latest  time.Time
}

// Record inserts an entry. RecordedAt defaults to now.
func (s *Store) Record(ctx context.Context, entry Entry) (*Entry, error) {
	if strings.TrimSpace(entry.RunID) == "" {
		return nil, errors.New("history entry requires a run id")
	}
	if entry.Status != StatusOK && entry.Status != StatusFailed {
		return nil, fmt.Errorf("invalid history status %q", entry.Status)
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	entry.RecordedAt = entry.RecordedAt.UTC()

	res, err := s.execWithRetry(ctx,
		`INSERT INTO history_entries (
            run_id, item_index, source, operation, status,
            error_kind, error_message, result_json, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.ItemIndex,
		nullableString(entry.Source),
		entry.Operation,
		string(entry.Status),
		nullableString(entry.ErrorKind),
		nullableString(entry.Error),
		nullableString(string(entry.Result)),
		entry.Duration.Milliseconds(),
		entry.RecordedAt.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return &entry, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.query(ctx,
		`SELECT `+entryColumns+` FROM history_entries ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
}

// ByRun returns every entry for runID in item order.
func (s *Store) ByRun(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx,
		`SELECT `+entryColumns+` FROM history_entries WHERE run_id = ? ORDER BY item_index, id`, strings.TrimSpace(runID))
}

// Prune deletes entries recorded before now-olderThan and returns the count removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(timestampLayout)
	res, err := s.execWithRetry(ctx, `DELETE FROM history_entries WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// Stats reports aggregate counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var (
		stats  Stats
		latest sql.NullString
		failed sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COUNT(DISTINCT run_id), SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), MAX(recorded_at)
         FROM history_entries`, string(StatusFailed),
	).Scan(&stats.Entries, &stats.Runs, &failed, &latest)
	if err != nil {
		return Stats{}, fmt.Errorf("history stats: %w", err)
	}
	stats.Failed = int(failed.Int64)
	if latest.Valid {
		stats.Latest = parseTimestamp(latest.String)
	}
	return stats, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	ctx = ensureContext(ctx)
	var entries []Entry
	err := retryOnBusy(ctx, func() error {
		entries = entries[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry      Entry
		source     sql.NullString
		status     string
		errorKind  sql.NullString
		errorText  sql.NullString
		result     sql.NullString
		durationMS int64
		recorded   string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.ItemIndex,
		&source,
		&entry.Operation,
		&status,
		&errorKind,
		&errorText,
		&result,
		&durationMS,
		&recorded,
	); err != nil {
		return Entry{}, err
	}
	entry.Source = source.String
	entry.Status = Status(status)
	entry.ErrorKind = errorKind.String
	entry.Error = errorText.String
	if result.Valid && result.String != "" {
		entry.Result = json.RawMessage(result.String)
	}
	entry.Duration = time.Duration(durationMS) * time.Millisecond
	entry.RecordedAt = parseTimestamp(recorded)
	return entry, nil
}

func parseTimestamp(value string) time.Time {
	if ts, err := time.Parse(timestampLayout, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
