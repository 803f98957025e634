package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Robin-Camp/movie-catalog/internal/domain"
	"github.com/Robin-Camp/movie-catalog/internal/repository"
)

type reviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

type reviewResponse struct {
	ID      string  `json:"id"`
	MovieID string  `json:"movieId"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

type reviewListResponse struct {
	Items []reviewResponse `json:"items"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	movieID, ok := s.movieIDParam(w, r)
	if !ok {
		return
	}

	reviews, err := s.repo.Reviews.ListForMovie(r.Context(), movieID)
	if err != nil {
		s.respondRepoError(w, err, "Failed to list reviews")
		return
	}

	items := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, toReviewResponse(review))
	}
	s.respondJSON(w, http.StatusOK, reviewListResponse{Items: items})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	movieID, ok := s.movieIDParam(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be an integer between 1 and 5")
		return
	}

	review, err := s.repo.Reviews.Create(r.Context(), repository.ReviewCreateParams{
		MovieID: movieID,
		Rating:  req.Rating,
		Comment: normalizeStringPtr(req.Comment),
	})
	if err != nil {
		s.respondRepoError(w, err, "Failed to create review")
		return
	}

	s.ratings.OnReviewChanged(movieID)
	s.respondJSON(w, http.StatusCreated, toReviewResponse(review))
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := s.reviewIDParam(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be an integer between 1 and 5")
		return
	}

	review, err := s.repo.Reviews.Update(r.Context(), reviewID, req.Rating, normalizeStringPtr(req.Comment))
	if err != nil {
		s.respondRepoError(w, err, "Failed to update review")
		return
	}

	s.ratings.OnReviewChanged(review.MovieID)
	s.respondJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := s.reviewIDParam(w, r)
	if !ok {
		return
	}

	movieID, err := s.repo.Reviews.Delete(r.Context(), reviewID)
	if err != nil {
		s.respondRepoError(w, err, "Failed to delete review")
		return
	}

	s.ratings.OnReviewChanged(movieID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reviewIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "reviewID")
	if _, err := uuid.Parse(raw); err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid review id")
		return "", false
	}
	return raw, true
}

func toReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:      review.ID,
		MovieID: review.MovieID,
		Rating:  review.Rating,
		Comment: review.Comment,
	}
}
