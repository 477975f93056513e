package model

import "time"

// Booking is the immutable record of one purchased seat.  A booking is
// written exactly once when a held seat is confirmed and never updated.
//
// Fields:
//  ID         – primary key identifier.
//  Reference  – public UUID shared with the customer and event consumers.
//  UserID     – purchasing user.
//  SeatID     – purchased seat.
//  MovieID    – movie of the theater at purchase time.
//  TheaterID  – theater (screening) of the seat.
//  Price      – price paid for the seat, in whole currency units.
//  BookedAt   – confirmation timestamp.
type Booking struct {
	ID        uint64    `json:"id"`         // bookings.id
	Reference string    `json:"reference"`  // bookings.reference
	UserID    uint64    `json:"user_id"`    // bookings.user_id
	SeatID    uint64    `json:"seat_id"`    // bookings.seat_id
	MovieID   uint64    `json:"movie_id"`   // bookings.movie_id
	TheaterID uint64    `json:"theater_id"` // bookings.theater_id
	Price     uint32    `json:"price"`      // bookings.price
	BookedAt  time.Time `json:"booked_at"`  // bookings.booked_at
}

// BookingDetail is a booking joined with the names a customer needs to
// recognise it.
type BookingDetail struct {
	Booking
	MovieName   string    `json:"movie_name"`
	TheaterName string    `json:"theater_name"`
	ShowTime    time.Time `json:"show_time"`
	SeatNumber  string    `json:"seat_number"`
}
