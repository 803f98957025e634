package httpserver

import "net/http"

type genreResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type directorResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.repo.Genres.List(r.Context())
	if err != nil {
		s.logger.Printf("list genres error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list genres")
		return
	}

	items := make([]genreResponse, 0, len(genres))
	for _, g := range genres {
		items = append(items, genreResponse{ID: g.ID, Name: g.Name})
	}
	s.respondJSON(w, http.StatusOK, map[string][]genreResponse{"items": items})
}

func (s *Server) handleListDirectors(w http.ResponseWriter, r *http.Request) {
	directors, err := s.repo.Directors.List(r.Context())
	if err != nil {
		s.logger.Printf("list directors error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list directors")
		return
	}

	items := make([]directorResponse, 0, len(directors))
	for _, d := range directors {
		items = append(items, directorResponse{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName})
	}
	s.respondJSON(w, http.StatusOK, map[string][]directorResponse{"items": items})
}
