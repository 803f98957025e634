package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Robin-Camp/movie-catalog/internal/domain"
)

// ReviewsRepository manages review rows. It never touches average_rating;
// callers signal the rating aggregator after each mutation instead.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

const reviewColumns = `id, movie_id, rating, comment, created_at, updated_at`

// ReviewCreateParams bundles the fields required to create a review.
type ReviewCreateParams struct {
	MovieID string
	Rating  int
	Comment *string
}

// Create inserts a review for a movie. A missing movie surfaces as
// ErrNotFound via the foreign-key violation.
func (r *ReviewsRepository) Create(ctx context.Context, params ReviewCreateParams) (domain.Review, error) {
	query := fmt.Sprintf(`
        INSERT INTO reviews (movie_id, rating, comment)
        VALUES ($1,$2,$3)
        RETURNING %s
    `, reviewColumns)

	review, err := scanReview(r.pool.QueryRow(ctx, query, params.MovieID, params.Rating, params.Comment))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Update changes the rating and comment of an existing review.
func (r *ReviewsRepository) Update(ctx context.Context, id string, rating int, comment *string) (domain.Review, error) {
	query := fmt.Sprintf(`
        UPDATE reviews
        SET rating = $2, comment = $3, updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, reviewColumns)

	review, err := scanReview(r.pool.QueryRow(ctx, query, id, rating, comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Delete removes a review and reports the owning movie id so the caller can
// trigger a recompute.
func (r *ReviewsRepository) Delete(ctx context.Context, id string) (string, error) {
	var movieID string
	err := r.pool.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING movie_id`, id).Scan(&movieID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return movieID, nil
}

// ListForMovie returns a movie's reviews, newest first.
func (r *ReviewsRepository) ListForMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM reviews WHERE movie_id = $1 ORDER BY created_at DESC, id
    `, reviewColumns)

	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// RatingsForMovie returns just the current rating values for a movie. The
// aggregator reads this full set on every recompute rather than applying
// deltas, which is what makes repeated and reordered recomputes converge.
func (r *ReviewsRepository) RatingsForMovie(ctx context.Context, movieID string) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating FROM reviews WHERE movie_id = $1`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]int, 0)
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.MovieID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return domain.Review{}, err
	}
	return review, nil
}
