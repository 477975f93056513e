package model

import "time"

// Theater is one screening: a venue name, a showtime and the movie being
// shown.  Seats belong to exactly one theater row.
type Theater struct {
	ID       uint64    `json:"id"`        // theaters.id
	MovieID  uint64    `json:"movie_id"`  // theaters.movie_id
	Name     string    `json:"name"`      // theaters.name
	ShowTime time.Time `json:"show_time"` // theaters.show_time
}
