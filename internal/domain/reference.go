package domain

import "time"

// Genre is a reference entity keyed by case-insensitive name.
type Genre struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Director is a reference entity keyed by the case-insensitive
// (first name, last name) pair. LastName may be empty when the source
// credit carried a single-token name.
type Director struct {
	ID        string
	FirstName string
	LastName  string
	CreatedAt time.Time
}
