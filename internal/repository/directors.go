package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Robin-Camp/movie-catalog/internal/domain"
)

// DirectorsRepository reconciles credited director names onto reference rows
// keyed by the case-insensitive (first name, last name) pair.
type DirectorsRepository struct {
	pool *pgxpool.Pool
}

const directorSelectByName = `
    SELECT id FROM directors
    WHERE lower(first_name) = lower($1) AND lower(last_name) = lower($2)
`

// Resolve returns the id of the director matching (firstName, lastName)
// case-insensitively, creating the row if absent. lastName may be empty for
// single-token credits. Concurrent creations converge via the same
// conflict-tolerant insert the genre resolver uses.
func (r *DirectorsRepository) Resolve(ctx context.Context, firstName, lastName string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, directorSelectByName, firstName, lastName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("lookup director %q %q: %w", firstName, lastName, err)
	}

	const insert = `
        INSERT INTO directors (first_name, last_name) VALUES ($1, $2)
        ON CONFLICT ((lower(first_name)), (lower(last_name))) DO NOTHING
        RETURNING id
    `
	err = r.pool.QueryRow(ctx, insert, firstName, lastName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("create director %q %q: %w", firstName, lastName, err)
	}

	if err := r.pool.QueryRow(ctx, directorSelectByName, firstName, lastName).Scan(&id); err != nil {
		return "", fmt.Errorf("resolve director %q %q after conflict: %w", firstName, lastName, err)
	}
	return id, nil
}

// List returns all directors ordered by last then first name.
func (r *DirectorsRepository) List(ctx context.Context) ([]domain.Director, error) {
	const query = `
        SELECT id, first_name, last_name, created_at
        FROM directors
        ORDER BY lower(last_name), lower(first_name)
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	directors := make([]domain.Director, 0)
	for rows.Next() {
		var d domain.Director
		if err := rows.Scan(&d.ID, &d.FirstName, &d.LastName, &d.CreatedAt); err != nil {
			return nil, err
		}
		directors = append(directors, d)
	}
	return directors, rows.Err()
}
