package model

import "time"

// Movie is a film offered in the catalog.  Movies are created by staff and
// are read-only for customers.  Genres and Languages are loaded from the
// movie_genres and movie_languages join tables when a caller needs them.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display title, searched case-insensitively.
//  Image       – poster image URL or path.
//  Rating      – average rating on a 0-10 scale.
//  Cast        – free-text cast list.
//  Description – synopsis.
//  TrailerURL  – embeddable trailer link (may be empty).
type Movie struct {
	ID          uint64     `json:"id"`          // movies.id
	Name        string     `json:"name"`        // movies.name
	Image       string     `json:"image"`       // movies.image
	Rating      float64    `json:"rating"`      // movies.rating
	Cast        string     `json:"cast"`        // movies.cast_members
	Description string     `json:"description"` // movies.description
	TrailerURL  string     `json:"trailer_url"` // movies.trailer_url
	Genres      []Genre    `json:"genres,omitempty"`
	Languages   []Language `json:"languages,omitempty"`
	CreatedAt   time.Time  `json:"-"` // movies.created_at
}

// Genre is reference data attached to movies.
type Genre struct {
	ID   uint64 `json:"id"`   // genres.id
	Name string `json:"name"` // genres.name
}

// Language is reference data attached to movies.
type Language struct {
	ID   uint64 `json:"id"`   // languages.id
	Name string `json:"name"` // languages.name
}
