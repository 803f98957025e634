package tmdb

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, "test-token", 2*time.Second, 1000, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestSearchByTitle_FirstResult(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/search/movie" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "Interstellar" {
			t.Errorf("query = %s", r.URL.Query().Get("query"))
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"id":157336,"title":"Interstellar","poster_path":"/poster.jpg"},
			{"id":999,"title":"Interstellar Wars"}
		]}`))
	}))

	result, err := client.SearchByTitle(context.Background(), "Interstellar")
	if err != nil {
		t.Fatalf("SearchByTitle: %v", err)
	}
	if result.ID != 157336 {
		t.Fatalf("result.ID = %d, want first hit 157336", result.ID)
	}
	if result.PosterPath == nil || *result.PosterPath != "/poster.jpg" {
		t.Fatalf("poster path not parsed: %+v", result.PosterPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestSearchByTitle_EmptyResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))

	_, err := client.SearchByTitle(context.Background(), "Zzzznonexistentmovie")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchDetails_ParsesCreditsAndCountries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/movie/157336" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "credits" {
			t.Errorf("append_to_response = %s", r.URL.Query().Get("append_to_response"))
		}
		_, _ = w.Write([]byte(`{
			"id":157336,
			"title":"Interstellar",
			"overview":"A team of explorers...",
			"runtime":169,
			"poster_path":"/poster.jpg",
			"genres":[{"id":12,"name":"Adventure"},{"id":18,"name":"Drama"}],
			"production_countries":[{"iso_3166_1":"US","name":"United States of America"}],
			"credits":{"crew":[
				{"name":"Hans Zimmer","job":"Original Music Composer"},
				{"name":"Christopher Nolan","job":"Director"}
			]}
		}`))
	}))

	details, err := client.FetchDetails(context.Background(), 157336)
	if err != nil {
		t.Fatalf("FetchDetails: %v", err)
	}
	if details.Runtime == nil || *details.Runtime != 169 {
		t.Fatalf("runtime = %+v, want 169", details.Runtime)
	}
	if len(details.Genres) != 2 || details.Genres[0].Name != "Adventure" {
		t.Fatalf("genres = %+v", details.Genres)
	}
	if len(details.ProductionCountries) != 1 || details.ProductionCountries[0].ISOCode != "US" {
		t.Fatalf("production countries = %+v", details.ProductionCountries)
	}
	if len(details.Credits.Crew) != 2 || details.Credits.Crew[1].Job != "Director" {
		t.Fatalf("crew = %+v", details.Credits.Crew)
	}
}

func TestFetchDetails_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := client.FetchDetails(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClient_UnavailableOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client, err := NewHTTPClient(srv.URL, "token", time.Second, 1000, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	if _, err := client.SearchByTitle(context.Background(), "Inception"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("search err = %v, want ErrUnavailable", err)
	}
	if _, err := client.FetchDetails(context.Background(), 1); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("details err = %v, want ErrUnavailable", err)
	}
}

func TestClient_UnavailableOnServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.SearchByTitle(context.Background(), "Inception")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
