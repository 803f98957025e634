package httpserver

import (
	"net/url"
	"testing"
)

func TestBuildMovieFilters(t *testing.T) {
	values, _ := url.ParseQuery("title= Inter &genre_name=horror&director_last_name=Nolan&max_duration=150&origin_country=US&sort=title&direction=desc")

	filters, err := buildMovieFilters(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.Title == nil || *filters.Title != "Inter" {
		t.Fatalf("title not trimmed: %+v", filters.Title)
	}
	if filters.GenreName == nil || *filters.GenreName != "horror" {
		t.Fatalf("genre_name parse failed: %+v", filters.GenreName)
	}
	if filters.DirectorLastName == nil || *filters.DirectorLastName != "Nolan" {
		t.Fatalf("director_last_name parse failed")
	}
	if filters.MaxDuration == nil || *filters.MaxDuration != 150 {
		t.Fatalf("max_duration parse failed")
	}
	if filters.OriginCountry == nil || *filters.OriginCountry != "US" {
		t.Fatalf("origin_country parse failed")
	}
	if filters.Sort != "title" || filters.Direction != "desc" {
		t.Fatalf("sort parse failed: %q %q", filters.Sort, filters.Direction)
	}
}

func TestBuildMovieFilters_Empty(t *testing.T) {
	filters, err := buildMovieFilters(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.Title != nil || filters.GenreName != nil || filters.MaxDuration != nil {
		t.Fatalf("empty query should produce zero filters: %+v", filters)
	}
}

func TestBuildMovieFilters_InvalidMaxDuration(t *testing.T) {
	for _, raw := range []string{"max_duration=abc", "max_duration=-5"} {
		values, _ := url.ParseQuery(raw)
		if _, err := buildMovieFilters(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestBuildMovieFilters_UnrecognizedKeysIgnored(t *testing.T) {
	values, _ := url.ParseQuery("droptable=users&title=Alien")
	filters, err := buildMovieFilters(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.Title == nil || *filters.Title != "Alien" {
		t.Fatalf("recognized key lost: %+v", filters.Title)
	}
}
