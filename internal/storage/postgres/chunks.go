package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"jamesfarrell.me/youtube-ai-helper/internal/storage/models"
)

// ChunkRepository stores embedded transcript chunks and answers similarity
// queries over them.
type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// SaveChunks replaces the stored chunks for a video.
func (r *ChunkRepository) SaveChunks(ctx context.Context, videoID string, chunks []models.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM video_chunks WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("clearing old chunks: %w", err)
	}

	const insert = `
		INSERT INTO video_chunks (video_id, chunk_text, chunk_embedding, chunk_start, chunk_end)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		_, err := stmt.ExecContext(ctx,
			videoID,
			chunk.Text,
			pgvector.NewVector(chunk.Embedding),
			chunk.Start.Seconds(),
			chunk.End.Seconds(),
		)
		if err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}
	return tx.Commit()
}

// Search returns the limit chunks closest to the query embedding by cosine
// distance, restricted to completed videos.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error) {
	const query = `
		SELECT v.id, vc.chunk_text, vc.chunk_start, vc.chunk_end,
			   1 - (vc.chunk_embedding <=> $1) AS similarity
		FROM video_chunks vc
		JOIN videos v ON v.id = vc.video_id
		WHERE v.status = 'completed'
		ORDER BY vc.chunk_embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var result models.SearchResult
		if err := rows.Scan(
			&result.VideoID,
			&result.ChunkText,
			&result.StartSec,
			&result.EndSec,
			&result.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
