package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const nightColumns = `id, start_time_milli, end_time_milli, quality_rating`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNight(r rowScanner) (*SleepNight, error) {
	n := &SleepNight{}
	var start, end int64
	if err := r.Scan(&n.ID, &start, &end, &n.Quality); err != nil {
		return nil, err
	}
	n.StartTime = time.UnixMilli(start).UTC()
	n.EndTime = time.UnixMilli(end).UTC()
	return n, nil
}

// Insert persists a new night and sets its ID.
func (s *Store) Insert(ctx context.Context, n *SleepNight) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sleep_nights (start_time_milli, end_time_milli, quality_rating) VALUES (?, ?, ?)`,
		n.StartTime.UnixMilli(), n.EndTime.UnixMilli(), n.Quality,
	)
	if err != nil {
		return fmt.Errorf("insert night: %w", err)
	}
	id, _ := res.LastInsertId()
	n.ID = id
	s.notify()
	return nil
}

// Update overwrites the timestamps and quality of an existing night.
func (s *Store) Update(ctx context.Context, n *SleepNight) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sleep_nights SET start_time_milli = ?, end_time_milli = ?, quality_rating = ? WHERE id = ?`,
		n.StartTime.UnixMilli(), n.EndTime.UnixMilli(), n.Quality, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update night %d: %w", n.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("update night %d: %w", n.ID, ErrNotFound)
	}
	s.notify()
	return nil
}

func (s *Store) GetNight(ctx context.Context, id int64) (*SleepNight, error) {
	n, err := scanNight(s.db.QueryRowContext(ctx,
		`SELECT `+nightColumns+` FROM sleep_nights WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get night %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get night %d: %w", id, err)
	}
	return n, nil
}

// GetTonight returns the most recently inserted night, or nil if the table
// is empty. The night may already be complete.
func (s *Store) GetTonight(ctx context.Context) (*SleepNight, error) {
	n, err := scanNight(s.db.QueryRowContext(ctx,
		`SELECT `+nightColumns+` FROM sleep_nights ORDER BY id DESC LIMIT 1`,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tonight: %w", err)
	}
	return n, nil
}

// ListNights returns every night, newest first.
func (s *Store) ListNights(ctx context.Context) ([]SleepNight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+nightColumns+` FROM sleep_nights ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list nights: %w", err)
	}
	defer rows.Close()

	var nights []SleepNight
	for rows.Next() {
		n, err := scanNight(rows)
		if err != nil {
			return nil, err
		}
		nights = append(nights, *n)
	}
	return nights, rows.Err()
}

// Clear deletes every night.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sleep_nights`); err != nil {
		return fmt.Errorf("clear nights: %w", err)
	}
	s.notify()
	return nil
}

// GetNightlySummary aggregates completed nights that started in [from, to),
// grouped by the UTC date of their start.
func (s *Store) GetNightlySummary(ctx context.Context, from, to time.Time) ([]NightlySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(start_time_milli / 1000, 'unixepoch') AS day,
		       COALESCE(SUM(end_time_milli - start_time_milli), 0) / 1000,
		       COUNT(*),
		       COUNT(CASE WHEN quality_rating >= 0 THEN 1 END),
		       COALESCE(AVG(CASE WHEN quality_rating >= 0 THEN quality_rating END), 0)
		FROM sleep_nights
		WHERE end_time_milli > start_time_milli
		  AND start_time_milli >= ? AND start_time_milli < ?
		GROUP BY day
		ORDER BY day`,
		from.UnixMilli(), to.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("nightly summary: %w", err)
	}
	defer rows.Close()

	var summaries []NightlySummary
	for rows.Next() {
		var ns NightlySummary
		if err := rows.Scan(&ns.Date, &ns.TotalSeconds, &ns.NightCount, &ns.RatedCount, &ns.AvgQuality); err != nil {
			return nil, err
		}
		summaries = append(summaries, ns)
	}
	return summaries, rows.Err()
}
