package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"jamesfarrell.me/youtube-ai-helper/internal/storage/models"
)

// VideoRepository stores submitted videos and their processing state.
type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts a pending video and returns its generated ID.
func (r *VideoRepository) Create(ctx context.Context, video *models.VideoRequest) (string, error) {
	const query = `
		INSERT INTO videos (id, video_url, status, searchable, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, 'pending', $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query, video.URL, video.Searchable).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("inserting video: %w", err)
	}
	return id, nil
}

// Get returns one video by ID. sql.ErrNoRows passes through so handlers can
// map it to 404.
func (r *VideoRepository) Get(ctx context.Context, id string) (*models.Video, error) {
	const query = `
		SELECT id, video_url, title, transcription, status, searchable, created_at, updated_at
		FROM videos
		WHERE id = $1
	`
	var video models.Video
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&video.ID,
		&video.VideoURL,
		&video.Title,
		&video.Transcription,
		&video.Status,
		&video.Searchable,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByURL returns the most recent video for a URL, if any.
func (r *VideoRepository) GetByURL(ctx context.Context, url string) (*models.Video, error) {
	const query = `
		SELECT id, video_url, title, transcription, status, searchable, created_at, updated_at
		FROM videos
		WHERE video_url = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var video models.Video
	err := r.db.QueryRowContext(ctx, query, url).Scan(
		&video.ID,
		&video.VideoURL,
		&video.Title,
		&video.Transcription,
		&video.Status,
		&video.Searchable,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// List returns all videos, newest first.
func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	const query = `
		SELECT id, video_url, title, transcription, status, searchable, created_at, updated_at
		FROM videos
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID,
			&video.VideoURL,
			&video.Title,
			&video.Transcription,
			&video.Status,
			&video.Searchable,
			&video.CreatedAt,
			&video.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning video row: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// UpdateStatus moves a video through the processing states.
func (r *VideoRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `
		UPDATE videos
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating video status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no video found with ID %s", id)
	}
	return nil
}

// SaveTranscription stores the transcript and title for a video.
func (r *VideoRepository) SaveTranscription(ctx context.Context, id, title, transcription string) error {
	const query = `
		UPDATE videos
		SET title = $1, transcription = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, title, transcription, id)
	if err != nil {
		return fmt.Errorf("saving transcription: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no video found with ID %s", id)
	}
	return nil
}
