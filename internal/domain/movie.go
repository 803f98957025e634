package domain

import "time"

// Movie is the canonical catalog entity. AverageRating is derived from the
// movie's reviews and is only ever written by the rating aggregator; it is nil
// while the movie has no reviews.
type Movie struct {
	ID              string
	Title           string
	Description     *string
	DurationMinutes *int
	OriginCountry   *string
	GenreID         *string
	DirectorID      *string
	PosterPath      *string
	AverageRating   *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MovieDraft is the transient result of ingesting a title from the metadata
// provider. It is not persisted by the ingestion path itself; the caller
// decides whether to store or discard it. Fields the provider lacked are nil.
type MovieDraft struct {
	Title           string
	Description     *string
	DurationMinutes *int
	OriginCountry   *string
	GenreID         *string
	DirectorID      *string
	PosterPath      *string
}
