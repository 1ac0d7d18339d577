package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
)

// DefaultListLimit caps ListForUser when no positive limit is given.
const DefaultListLimit = 20

// RunRepository handles recommendation run database operations.
type RunRepository struct {
	pool *pgxpool.Pool
}

// RecordRun inserts a run, implementing recommend.Recorder. CreatedAt is
// set by the database when zero.
func (r *RunRepository) RecordRun(ctx context.Context, run recommend.Run) error {
	row := fromRecommendRun(run)
	return r.Create(ctx, &row)
}

// Create inserts a run and fills in its ID and CreatedAt.
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	query := `
		INSERT INTO recommendation_runs
			(id, user_id, strategy, playlist_id, track_count, seed_tracks, seed_artists, seed_genres, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9::timestamptz, NOW()))
		RETURNING created_at
	`
	var createdAt any
	if !run.CreatedAt.IsZero() {
		createdAt = run.CreatedAt
	}

	err := r.pool.QueryRow(ctx, query,
		run.ID,
		run.UserID,
		run.Strategy,
		run.PlaylistID,
		run.TrackCount,
		nonNil(run.SeedTracks),
		nonNil(run.SeedArtists),
		nonNil(run.SeedGenres),
		createdAt,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, user_id, strategy, playlist_id, track_count, seed_tracks, seed_artists, seed_genres, created_at
		FROM recommendation_runs
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}

// ListForUser returns a user's most recent runs, newest first.
func (r *RunRepository) ListForUser(ctx context.Context, userID string, limit int) ([]recommend.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, user_id, strategy, playlist_id, track_count, seed_tracks, seed_artists, seed_genres, created_at
		FROM recommendation_runs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying user runs: %w", err)
	}
	defer rows.Close()

	runs := []recommend.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run.toRecommendRun())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.UserID,
		&run.Strategy,
		&run.PlaylistID,
		&run.TrackCount,
		&run.SeedTracks,
		&run.SeedArtists,
		&run.SeedGenres,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
