// tmdb-mock serves the two provider endpoints the catalog uses from a JSON
// fixture file, for local development without real TMDB credentials.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type movieEntry struct {
	ID                  int64             `json:"id"`
	Title               string            `json:"title"`
	Overview            string            `json:"overview"`
	Runtime             *int              `json:"runtime"`
	PosterPath          *string           `json:"poster_path"`
	Genres              []json.RawMessage `json:"genres"`
	ProductionCountries []json.RawMessage `json:"production_countries"`
	Credits             json.RawMessage   `json:"credits"`
}

func main() {
	var (
		port = flag.String("port", "9099", "port to listen on")
		data = flag.String("data", "mock-tmdb.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var entries []movieEntry
	if err := json.Unmarshal(file, &entries); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}
	byID := make(map[int64]movieEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/3/search/movie", func(w http.ResponseWriter, r *http.Request) {
		query := strings.ToLower(r.URL.Query().Get("query"))
		results := make([]map[string]interface{}, 0)
		for _, entry := range entries {
			if query != "" && strings.Contains(strings.ToLower(entry.Title), query) {
				results = append(results, map[string]interface{}{
					"id":          entry.ID,
					"title":       entry.Title,
					"poster_path": entry.PosterPath,
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
	})
	mux.HandleFunc("/3/movie/", func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.URL.Path, "/3/movie/")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		entry, ok := byID[id]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entry)
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s with %d entries", addr, len(entries))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
