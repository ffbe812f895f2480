package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReportRecord is one stored analysis report. Payload carries the full
// report document exactly as the processor produced it.
type ReportRecord struct {
	ID        uuid.UUID       `json:"id"`
	Platform  string          `json:"platform"`
	Title     string          `json:"title"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ReportSummary is the listing view of a report, payload omitted.
type ReportSummary struct {
	ID        uuid.UUID `json:"id"`
	Platform  string    `json:"platform"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Store) SaveReport(ctx context.Context, rec ReportRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reports (id, platform, title, payload, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		rec.ID, rec.Platform, rec.Title, rec.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*ReportRecord, error) {
	var rec ReportRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, platform, title, payload, created_at
		FROM reports WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Platform, &rec.Title, &rec.Payload, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select report: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, platform, title, created_at
		FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var rec ReportSummary
		if err := rows.Scan(&rec.ID, &rec.Platform, &rec.Title, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
