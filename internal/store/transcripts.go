package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rtzll/transcriptgrab/internal/apperr"
	"github.com/rtzll/transcriptgrab/internal/transcript"
)

// Transcript is a saved transcript owned by one user.
type Transcript struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	VideoID       string               `json:"videoId"`
	VideoURL      string               `json:"videoUrl"`
	VideoTitle    string               `json:"videoTitle"`
	ThumbnailURL  string               `json:"thumbnailUrl,omitempty"`
	VideoDuration *int                 `json:"videoDuration,omitempty"`
	Segments      []transcript.Segment `json:"segments,omitempty"`
	SavedAt       time.Time            `json:"savedAt"`
}

// TranscriptInput is the payload of an upsert.
type TranscriptInput struct {
	UserID        string
	VideoID       string
	VideoURL      string
	VideoTitle    string
	ThumbnailURL  string
	VideoDuration *int
	Segments      []transcript.Segment
}

// UpsertResult reports whether this call created the record. ID is the
// stored record's id in both cases.
type UpsertResult struct {
	Inserted bool   `json:"inserted"`
	ID       string `json:"id,omitempty"`
}

// ExistsFor reports whether userID already saved videoID, and its id.
func (s *Store) ExistsFor(ctx context.Context, userID, videoID string) (bool, string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id FROM transcripts WHERE user_id = ? AND video_id = ?`),
		userID, videoID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("check transcript %s: %w", videoID, err)
	}
	return true, id, nil
}

// Upsert stores a transcript unless the user already has one for the same
// video. A conflict is not an error: the result has Inserted false and the
// existing record's id.
func (s *Store) Upsert(ctx context.Context, in TranscriptInput) (UpsertResult, error) {
	if in.UserID == "" || in.VideoID == "" {
		return UpsertResult{}, apperr.New(apperr.KindValidation, "MISSING_FIELDS", "user and video are required")
	}
	if len(in.Segments) == 0 {
		return UpsertResult{}, apperr.New(apperr.KindValidation, "EMPTY_TRANSCRIPT", "transcript has no segments")
	}

	segments, err := json.Marshal(in.Segments)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("encode segments: %w", err)
	}

	var duration sql.NullInt64
	if in.VideoDuration != nil {
		duration = sql.NullInt64{Int64: int64(*in.VideoDuration), Valid: true}
	}
	thumbnail := sql.NullString{String: in.ThumbnailURL, Valid: in.ThumbnailURL != ""}

	var id string
	err = s.db.QueryRowContext(ctx,
		s.rebind(`INSERT INTO transcripts
			(id, user_id, video_id, video_url, video_title, thumbnail_url, video_duration, segments, saved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, video_id) DO NOTHING
			RETURNING id`),
		uuid.NewString(), in.UserID, in.VideoID, in.VideoURL, in.VideoTitle,
		thumbnail, duration, string(segments), now(),
	).Scan(&id)
	if err == nil {
		return UpsertResult{Inserted: true, ID: id}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return UpsertResult{}, fmt.Errorf("insert transcript %s: %w", in.VideoID, err)
	}

	return s.conflictResult(ctx, in.UserID, in.VideoID)
}

// conflictResult resolves an insert that lost to another writer into the
// existing record's id.
func (s *Store) conflictResult(ctx context.Context, userID, videoID string) (UpsertResult, error) {
	found, existing, err := s.ExistsFor(ctx, userID, videoID)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("look up existing transcript %s: %w", videoID, err)
	}
	if !found {
		return UpsertResult{}, fmt.Errorf("transcript %s conflicted but is no longer stored", videoID)
	}
	return UpsertResult{Inserted: false, ID: existing}, nil
}

// Get returns one of userID's transcripts, including its segments.
func (s *Store) Get(ctx context.Context, userID, id string) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, user_id, video_id, video_url, video_title, thumbnail_url, video_duration, segments, saved_at
			FROM transcripts WHERE user_id = ? AND id = ?`),
		userID, id,
	)
	t, err := scanTranscript(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "NOT_FOUND", "Transcript not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript %s: %w", id, err)
	}
	return t, nil
}

// List returns userID's transcripts, newest first, without segments.
func (s *Store) List(ctx context.Context, userID string) ([]Transcript, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, user_id, video_id, video_url, video_title, thumbnail_url, video_duration, '', saved_at
			FROM transcripts WHERE user_id = ? ORDER BY saved_at DESC, id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	result := []Transcript{}
	for rows.Next() {
		t, err := scanTranscript(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// DeleteMany removes the listed transcripts owned by userID and returns how
// many were deleted. Ids belonging to other users are ignored.
func (s *Store) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM transcripts WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`),
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete transcripts: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranscript(row scanner, withSegments bool) (*Transcript, error) {
	var (
		t         Transcript
		thumbnail sql.NullString
		duration  sql.NullInt64
		segments  string
		savedAt   string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.VideoID, &t.VideoURL, &t.VideoTitle,
		&thumbnail, &duration, &segments, &savedAt); err != nil {
		return nil, err
	}
	t.ThumbnailURL = thumbnail.String
	if duration.Valid {
		d := int(duration.Int64)
		t.VideoDuration = &d
	}
	t.SavedAt = parseTime(savedAt)
	if withSegments {
		if err := json.Unmarshal([]byte(segments), &t.Segments); err != nil {
			return nil, fmt.Errorf("decode segments: %w", err)
		}
	}
	return &t, nil
}
