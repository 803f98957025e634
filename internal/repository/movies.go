package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Robin-Camp/movie-catalog/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    m.id,
    m.title,
    m.description,
    m.duration_minutes,
    m.origin_country,
    m.genre_id,
    m.director_id,
    m.poster_path,
    m.average_rating,
    m.created_at,
    m.updated_at
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title           string
	Description     *string
	DurationMinutes *int
	OriginCountry   *string
	GenreID         *string
	DirectorID      *string
	PosterPath      *string
}

// MovieListFilters is the recognized filter/sort vocabulary for the movie
// read path. Values come straight from an HTTP query string; everything here
// is bound as a positional parameter, and Sort only ever reaches the query
// text after passing the column allow-list below.
type MovieListFilters struct {
	Title            *string
	GenreName        *string
	DirectorLastName *string
	MaxDuration      *int
	OriginCountry    *string
	Sort             string
	Direction        string
}

// movieSortColumns maps caller-facing sort keys to real column references.
// Unknown keys are silently ignored rather than rejected.
var movieSortColumns = map[string]string{
	"title":            "m.title",
	"duration_minutes": "m.duration_minutes",
	"origin_country":   "m.origin_country",
	"average_rating":   "m.average_rating",
	"created_at":       "m.created_at",
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies AS m (title, description, duration_minutes, origin_country, genre_id, director_id, poster_path)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		params.Title, params.Description, params.DurationMinutes, params.OriginCountry,
		params.GenreID, params.DirectorID, params.PosterPath)
	return scanMovie(row)
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies m WHERE m.id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Update replaces the caller-owned fields of a movie. average_rating is
// deliberately untouched; its only writer is the rating aggregator.
func (r *MoviesRepository) Update(ctx context.Context, id string, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies m
        SET title = $2,
            description = $3,
            duration_minutes = $4,
            origin_country = $5,
            genre_id = $6,
            director_id = $7,
            poster_path = $8,
            updated_at = now()
        WHERE m.id = $1
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id,
		params.Title, params.Description, params.DurationMinutes, params.OriginCountry,
		params.GenreID, params.DirectorID, params.PosterPath))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Delete removes a movie and, via cascade, its reviews.
func (r *MoviesRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAverageRating persists a recomputed average onto the movie. A nil value
// clears the column (zero reviews). The boolean reports whether the movie
// still existed; a vanished movie is the caller's no-op case, not an error.
func (r *MoviesRepository) SetAverageRating(ctx context.Context, id string, average *float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE movies SET average_rating = $2, updated_at = now() WHERE id = $1`,
		id, average)
	if err != nil {
		return false, fmt.Errorf("set average rating: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns movies matching the provided filters, conjunctively applied.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) ([]domain.Movie, error) {
	where := make([]string, 0)
	joins := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Title != nil && strings.TrimSpace(*filters.Title) != "" {
		where = append(where, fmt.Sprintf("m.title ILIKE %s", arg("%"+strings.TrimSpace(*filters.Title)+"%")))
	}
	if filters.GenreName != nil && strings.TrimSpace(*filters.GenreName) != "" {
		joins = append(joins, "JOIN genres g ON g.id = m.genre_id")
		where = append(where, fmt.Sprintf("g.name ILIKE %s", arg("%"+strings.TrimSpace(*filters.GenreName)+"%")))
	}
	if filters.DirectorLastName != nil && strings.TrimSpace(*filters.DirectorLastName) != "" {
		joins = append(joins, "JOIN directors d ON d.id = m.director_id")
		where = append(where, fmt.Sprintf("d.last_name ILIKE %s", arg("%"+strings.TrimSpace(*filters.DirectorLastName)+"%")))
	}
	if filters.MaxDuration != nil {
		where = append(where, fmt.Sprintf("m.duration_minutes <= %s", arg(*filters.MaxDuration)))
	}
	if filters.OriginCountry != nil && strings.TrimSpace(*filters.OriginCountry) != "" {
		where = append(where, fmt.Sprintf("m.origin_country = %s", arg(strings.TrimSpace(*filters.OriginCountry))))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies m")
	for _, join := range joins {
		queryBuilder.WriteString(" ")
		queryBuilder.WriteString(join)
	}
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY ")
	queryBuilder.WriteString(orderClause(filters.Sort, filters.Direction))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	return items, rows.Err()
}

// orderClause validates the requested sort column against movieSortColumns
// before it is interpolated. Unrecognized columns fall back to the default
// ordering; any direction other than a literal "desc" sorts ascending.
func orderClause(sort, direction string) string {
	column, ok := movieSortColumns[sort]
	if !ok {
		return "m.created_at DESC, m.id"
	}
	dir := "ASC"
	if strings.EqualFold(direction, "desc") {
		dir = "DESC"
	}
	return column + " " + dir + ", m.id"
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.DurationMinutes,
		&movie.OriginCountry,
		&movie.GenreID,
		&movie.DirectorID,
		&movie.PosterPath,
		&movie.AverageRating,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
