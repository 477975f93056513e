// Package queue carries booking events over RabbitMQ: the event payload,
// the publisher used after a confirmation and the consumer that writes the
// booking ledger.
package queue

import "time"

// BookingConfirmedQueue is the durable queue booking events are routed to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once per successful payment
// confirmation.  It carries everything the ledger needs so consumers never
// query the primary database.
type BookingConfirmedEvent struct {
	References  []string  `json:"references"`
	UserID      uint64    `json:"user_id"`
	MovieID     uint64    `json:"movie_id"`
	MovieName   string    `json:"movie"`
	TheaterID   uint64    `json:"theater_id"`
	TheaterName string    `json:"theater"`
	ShowTime    time.Time `json:"show_time"`
	Seats       []string  `json:"seats"`
	Total       uint64    `json:"total"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
