package domain

import "time"

// Review holds a single integer rating in [1,5] for a movie. Every review
// mutation triggers a recompute of the owning movie's average rating.
type Review struct {
	ID        string
	MovieID   string
	Rating    int
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
