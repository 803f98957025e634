package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Robin-Camp/movie-catalog/internal/domain"
)

// GenresRepository reconciles free-text genre labels onto locally-owned
// reference rows.
type GenresRepository struct {
	pool *pgxpool.Pool
}

const genreSelectByName = `SELECT id FROM genres WHERE lower(name) = lower($1)`

// Resolve returns the id of the genre matching name case-insensitively,
// creating the row (with the caller's original casing) if it does not exist.
// A concurrent resolver that wins the insert race is tolerated: the insert is
// conflict-tolerant and the winner's row is re-read, so both callers converge
// on the same id.
func (r *GenresRepository) Resolve(ctx context.Context, name string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, genreSelectByName, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("lookup genre %q: %w", name, err)
	}

	const insert = `
        INSERT INTO genres (name) VALUES ($1)
        ON CONFLICT ((lower(name))) DO NOTHING
        RETURNING id
    `
	err = r.pool.QueryRow(ctx, insert, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("create genre %q: %w", name, err)
	}

	// Lost the insert race; the winning row is visible now.
	if err := r.pool.QueryRow(ctx, genreSelectByName, name).Scan(&id); err != nil {
		return "", fmt.Errorf("resolve genre %q after conflict: %w", name, err)
	}
	return id, nil
}

// List returns all genres ordered by name.
func (r *GenresRepository) List(ctx context.Context) ([]domain.Genre, error) {
	const query = `SELECT id, name, created_at FROM genres ORDER BY lower(name)`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := make([]domain.Genre, 0)
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
