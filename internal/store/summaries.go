package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rtzll/transcriptgrab/internal/summary"
)

// LookupSummary returns the shared summary for videoID, if one was stored.
func (s *Store) LookupSummary(ctx context.Context, videoID string) (summary.Summary, bool, error) {
	var sum summary.Summary
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT bullets, paragraph FROM summaries WHERE video_id = ?`),
		videoID,
	).Scan(&sum.Bullets, &sum.Paragraph)
	if errors.Is(err, sql.ErrNoRows) {
		return summary.Summary{}, false, nil
	}
	if err != nil {
		return summary.Summary{}, false, fmt.Errorf("lookup summary %s: %w", videoID, err)
	}
	return sum, true, nil
}

// InsertSummary stores sum for videoID unless one already exists. It
// reports whether this call inserted the row; losing a race is not an error.
func (s *Store) InsertSummary(ctx context.Context, videoID string, sum summary.Summary) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO summaries (id, video_id, bullets, paragraph, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (video_id) DO NOTHING`),
		uuid.NewString(), videoID, sum.Bullets, sum.Paragraph, now(),
	)
	if err != nil {
		return false, fmt.Errorf("insert summary %s: %w", videoID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert summary %s: rows affected: %w", videoID, err)
	}
	return n == 1, nil
}
