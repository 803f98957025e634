package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Robin-Camp/movie-catalog/internal/domain"
	"github.com/Robin-Camp/movie-catalog/internal/repository"
	"github.com/Robin-Camp/movie-catalog/internal/tmdb"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type movieRequest struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	DurationMinutes *int    `json:"durationMinutes"`
	OriginCountry   *string `json:"originCountry"`
	GenreID         *string `json:"genreId"`
	DirectorID      *string `json:"directorId"`
	PosterPath      *string `json:"posterPath"`
}

type ingestRequest struct {
	Title string `json:"title"`
}

type movieResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     *string  `json:"description,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	OriginCountry   *string  `json:"originCountry,omitempty"`
	GenreID         *string  `json:"genreId,omitempty"`
	DirectorID      *string  `json:"directorId,omitempty"`
	PosterPath      *string  `json:"posterPath,omitempty"`
	AverageRating   *float64 `json:"averageRating"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

type movieListResponse struct {
	Items []movieResponse `json:"items"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movies, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}

	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, movieListResponse{Items: items})
}

// buildMovieFilters maps the recognized query-string keys onto the
// repository's filter vocabulary. Unrecognized keys are ignored; sort and
// direction pass through unchecked because the repository validates the sort
// column against its own allow-list.
func buildMovieFilters(query url.Values) (repository.MovieListFilters, error) {
	var filters repository.MovieListFilters

	if val := strings.TrimSpace(query.Get("title")); val != "" {
		filters.Title = &val
	}
	if val := strings.TrimSpace(query.Get("genre_name")); val != "" {
		filters.GenreName = &val
	}
	if val := strings.TrimSpace(query.Get("director_last_name")); val != "" {
		filters.DirectorLastName = &val
	}
	if val := strings.TrimSpace(query.Get("max_duration")); val != "" {
		duration, err := strconv.Atoi(val)
		if err != nil || duration < 0 {
			return filters, fmt.Errorf("invalid max_duration value")
		}
		filters.MaxDuration = &duration
	}
	if val := strings.TrimSpace(query.Get("origin_country")); val != "" {
		filters.OriginCountry = &val
	}
	filters.Sort = strings.TrimSpace(query.Get("sort"))
	filters.Direction = strings.TrimSpace(query.Get("direction"))
	return filters, nil
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if msg, ok := validateMovieRequest(req); !ok {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg)
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), movieParams(req))
	if err != nil {
		s.logger.Printf("create movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create movie")
		return
	}

	w.Header().Set("Location", "/movies/"+movie.ID)
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

// handleIngestMovie resolves a title through the metadata provider and
// persists the resulting draft. Provider misses surface as "no match found";
// transport failures as a bad-gateway, never as a partially stored movie.
func (s *Server) handleIngestMovie(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		return
	}

	draft, err := s.ingestor.IngestByTitle(r.Context(), title)
	if err != nil {
		switch {
		case errors.Is(err, tmdb.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "No match found for title")
		case errors.Is(err, tmdb.ErrUnavailable):
			s.logger.Printf("ingest %q provider error: %v", title, err)
			s.respondError(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE", "Metadata provider is unavailable")
		default:
			s.logger.Printf("ingest %q error: %v", title, err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to ingest movie")
		}
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		Title:           draft.Title,
		Description:     draft.Description,
		DurationMinutes: draft.DurationMinutes,
		OriginCountry:   draft.OriginCountry,
		GenreID:         draft.GenreID,
		DirectorID:      draft.DirectorID,
		PosterPath:      draft.PosterPath,
	})
	if err != nil {
		s.logger.Printf("persist ingested movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store ingested movie")
		return
	}

	w.Header().Set("Location", "/movies/"+movie.ID)
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := s.movieIDParam(w, r)
	if !ok {
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), movieID)
	if err != nil {
		s.respondRepoError(w, err, "Failed to fetch movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := s.movieIDParam(w, r)
	if !ok {
		return
	}

	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if msg, ok := validateMovieRequest(req); !ok {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg)
		return
	}

	movie, err := s.repo.Movies.Update(r.Context(), movieID, movieParams(req))
	if err != nil {
		s.respondRepoError(w, err, "Failed to update movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := s.movieIDParam(w, r)
	if !ok {
		return
	}

	if err := s.repo.Movies.Delete(r.Context(), movieID); err != nil {
		s.respondRepoError(w, err, "Failed to delete movie")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateMovieRequest(req movieRequest) (string, bool) {
	if strings.TrimSpace(req.Title) == "" {
		return "title is required", false
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return "durationMinutes must be positive", false
	}
	return "", true
}

func movieParams(req movieRequest) repository.MovieCreateParams {
	return repository.MovieCreateParams{
		Title:           strings.TrimSpace(req.Title),
		Description:     normalizeStringPtr(req.Description),
		DurationMinutes: req.DurationMinutes,
		OriginCountry:   normalizeStringPtr(req.OriginCountry),
		GenreID:         normalizeStringPtr(req.GenreID),
		DirectorID:      normalizeStringPtr(req.DirectorID),
		PosterPath:      req.PosterPath,
	}
}

func (s *Server) movieIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "movieID")
	if _, err := uuid.Parse(raw); err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return "", false
	}
	return raw, true
}

func (s *Server) respondRepoError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	s.logger.Printf("%s: %v", message, err)
	s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:              movie.ID,
		Title:           movie.Title,
		Description:     movie.Description,
		DurationMinutes: movie.DurationMinutes,
		OriginCountry:   movie.OriginCountry,
		GenreID:         movie.GenreID,
		DirectorID:      movie.DirectorID,
		PosterPath:      movie.PosterPath,
		AverageRating:   movie.AverageRating,
		CreatedAt:       movie.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       movie.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func normalizeStringPtr(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	if val == "" {
		return nil
	}
	return &val
}
