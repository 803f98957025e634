// Package ratings keeps every movie's average_rating consistent with its
// review set. Recomputes are triggered out-of-band by review mutations and
// always read the full current review set, so repeated or reordered triggers
// converge on the correct value.
package ratings

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// MovieStore persists recomputed averages. The boolean reports whether the
// movie still existed.
type MovieStore interface {
	SetAverageRating(ctx context.Context, movieID string, average *float64) (bool, error)
}

// ReviewSource reads the current rating values for a movie.
type ReviewSource interface {
	RatingsForMovie(ctx context.Context, movieID string) ([]int, error)
}

type job struct {
	id      uuid.UUID
	movieID string
}

// Aggregator recomputes movie averages asynchronously. OnReviewChanged is
// fire-and-forget for callers; the worker started by Run drains the queue.
type Aggregator struct {
	movies  MovieStore
	reviews ReviewSource
	jobs    chan job
	timeout time.Duration
	logger  *log.Logger
}

// New constructs an Aggregator with a buffered trigger queue of queueSize.
func New(movies MovieStore, reviews ReviewSource, queueSize int, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Aggregator{
		movies:  movies,
		reviews: reviews,
		jobs:    make(chan job, queueSize),
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

// OnReviewChanged enqueues a recompute for movieID without blocking the
// caller. A full queue drops the trigger with a log line; the next mutation
// on the same movie re-enqueues a full-state recompute, so a drop delays
// convergence rather than corrupting it.
func (a *Aggregator) OnReviewChanged(movieID string) {
	j := job{id: uuid.New(), movieID: movieID}
	select {
	case a.jobs <- j:
	default:
		a.logger.Printf("ratings: queue full, dropped recompute %s for movie %s", j.id, movieID)
	}
}

// Run drains the trigger queue until ctx is cancelled. Failed recomputes are
// logged and left to the next trigger; the worker itself never retries.
func (a *Aggregator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-a.jobs:
			jobCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
			if err := a.Recompute(jobCtx, j.movieID); err != nil {
				a.logger.Printf("ratings: recompute %s for movie %s failed: %v", j.id, j.movieID, err)
			}
			cancel()
		}
	}
}

// Recompute reads the movie's current review ratings, computes the mean
// rounded to two decimal places (nil for an empty set), and persists it.
// Idempotent: unchanged reviews produce an identical write. A movie deleted
// mid-flight is a no-op.
func (a *Aggregator) Recompute(ctx context.Context, movieID string) error {
	values, err := a.reviews.RatingsForMovie(ctx, movieID)
	if err != nil {
		return err
	}

	var average *float64
	if len(values) > 0 {
		sum := 0
		for _, v := range values {
			sum += v
		}
		mean := round2(float64(sum) / float64(len(values)))
		average = &mean
	}

	found, err := a.movies.SetAverageRating(ctx, movieID, average)
	if err != nil {
		return err
	}
	if !found {
		a.logger.Printf("ratings: movie %s gone before recompute landed, skipping", movieID)
	}
	return nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
