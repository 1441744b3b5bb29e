package store

import (
	"context"
	"time"

	"pantry-cookbook/internal/core/extraction"
	"pantry-cookbook/internal/pkg/common"

	"github.com/rotisserie/eris"
)

// RecordScrape 寫入一筆抓取紀錄
func (s *SQLiteStore) RecordScrape(ctx context.Context, e extraction.LogEntry) error {
	if e.ID == "" {
		e.ID = common.GenerateUUID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_log (id, url, success, method, confidence, failure_reason, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.URL, boolToInt(e.Success), e.Method, e.Confidence, e.FailureReason, e.DurationMs, e.CreatedAt)
	return eris.Wrapf(err, "sqlite: record scrape %s", e.URL)
}

// RecentScrapes 依時間倒序讀取最近的抓取紀錄
func (s *SQLiteStore) RecentScrapes(ctx context.Context, limit int) ([]extraction.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, success, method, confidence, failure_reason, duration_ms, created_at
		 FROM scrape_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: recent scrapes")
	}
	defer rows.Close() //nolint:errcheck

	out := make([]extraction.LogEntry, 0)
	for rows.Next() {
		var (
			e       extraction.LogEntry
			success int
		)
		if err := rows.Scan(&e.ID, &e.URL, &success, &e.Method, &e.Confidence,
			&e.FailureReason, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan scrape")
		}
		e.Success = success != 0
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate scrapes")
}
