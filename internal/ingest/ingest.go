// Package ingest resolves a free-text title into a ready-to-persist movie
// draft: one provider search, one detail fetch, and reconciliation of the
// genre and director labels onto local reference rows.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Robin-Camp/movie-catalog/internal/domain"
	"github.com/Robin-Camp/movie-catalog/internal/tmdb"
)

// GenreResolver maps a genre label onto a local reference id.
type GenreResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// DirectorResolver maps a (first, last) name pair onto a local reference id.
type DirectorResolver interface {
	Resolve(ctx context.Context, firstName, lastName string) (string, error)
}

// Ingestor composes the catalog client and the reference resolvers.
type Ingestor struct {
	catalog   tmdb.Client
	genres    GenreResolver
	directors DirectorResolver
	logger    *log.Logger
}

// New constructs an Ingestor.
func New(catalog tmdb.Client, genres GenreResolver, directors DirectorResolver, logger *log.Logger) *Ingestor {
	if logger == nil {
		logger = log.Default()
	}
	return &Ingestor{catalog: catalog, genres: genres, directors: directors, logger: logger}
}

// IngestByTitle searches the provider for title, fetches the top match's
// details, and returns a draft with genre and director resolved to local
// references. Fields the provider lacks stay nil on the draft; only a total
// absence of search results is tmdb.ErrNotFound, and any failure after the
// search returns an error with no partial draft.
func (ing *Ingestor) IngestByTitle(ctx context.Context, title string) (domain.MovieDraft, error) {
	hit, err := ing.catalog.SearchByTitle(ctx, title)
	if err != nil {
		return domain.MovieDraft{}, fmt.Errorf("search %q: %w", title, err)
	}

	details, err := ing.catalog.FetchDetails(ctx, hit.ID)
	if err != nil {
		return domain.MovieDraft{}, fmt.Errorf("fetch details for %d: %w", hit.ID, err)
	}

	draft := domain.MovieDraft{
		Title:           details.Title,
		DurationMinutes: details.Runtime,
		PosterPath:      details.PosterPath,
	}
	if details.Overview != "" {
		overview := details.Overview
		draft.Description = &overview
	}
	if len(details.ProductionCountries) > 0 {
		country := details.ProductionCountries[0].ISOCode
		draft.OriginCountry = &country
	}

	if len(details.Genres) > 0 && strings.TrimSpace(details.Genres[0].Name) != "" {
		genreID, err := ing.genres.Resolve(ctx, details.Genres[0].Name)
		if err != nil {
			return domain.MovieDraft{}, fmt.Errorf("resolve genre %q: %w", details.Genres[0].Name, err)
		}
		draft.GenreID = &genreID
	}

	if name := directorName(details.Credits.Crew); strings.TrimSpace(name) != "" {
		first, last := splitFullName(name)
		directorID, err := ing.directors.Resolve(ctx, first, last)
		if err != nil {
			return domain.MovieDraft{}, fmt.Errorf("resolve director %q: %w", name, err)
		}
		draft.DirectorID = &directorID
	}

	ing.logger.Printf("ingest: resolved %q to draft %q (genre=%v director=%v)",
		title, draft.Title, draft.GenreID != nil, draft.DirectorID != nil)
	return draft, nil
}

// directorName returns the name of the first crew credit whose job is
// "Director", or "" when the credits carry none.
func directorName(crew []tmdb.CrewCredit) string {
	for _, credit := range crew {
		if credit.Job == "Director" {
			return credit.Name
		}
	}
	return ""
}

// splitFullName splits on the first space: first token becomes the first
// name, the remainder the last name. A single-token name yields an empty
// last name, matching how the credits were always reconciled.
func splitFullName(full string) (first, last string) {
	parts := strings.SplitN(full, " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = parts[1]
	}
	return first, last
}
