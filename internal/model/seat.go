package model

import "time"

// Seat is a single seat of a theater.  IsReserved marks a temporary hold
// and IsBooked a purchased seat.  ReservedAt and ReservedBy are set iff
// IsReserved is true.
//
// Fields:
//  ID         – primary key identifier.
//  TheaterID  – theater owning the seat.
//  SeatNumber – label unique within the theater, e.g. "A1".
//  IsReserved – seat is held pending payment.
//  IsBooked   – seat has been purchased; never released in normal flow.
//  ReservedAt – when the current hold started (nil when not held).
//  ReservedBy – user holding the seat (nil when not held).
type Seat struct {
	ID         uint64     `json:"id"`                    // seats.id
	TheaterID  uint64     `json:"theater_id"`            // seats.theater_id
	SeatNumber string     `json:"seat_number"`           // seats.seat_number
	IsReserved bool       `json:"is_reserved"`           // seats.is_reserved
	IsBooked   bool       `json:"is_booked"`             // seats.is_booked
	ReservedAt *time.Time `json:"reserved_at,omitempty"` // seats.reserved_at (nullable)
	ReservedBy *uint64    `json:"-"`                     // seats.reserved_by (nullable)
}

// Available reports whether the seat can be held.
func (s Seat) Available() bool {
	return !s.IsBooked && !s.IsReserved
}
