package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingRepo persists confirmed bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// ConfirmInput describes one payment confirmation.
type ConfirmInput struct {
	UserID    uint64
	MovieID   uint64
	TheaterID uint64
	SeatIDs   []uint64
	Price     uint32 // per seat
	Now       time.Time
}

// Confirm turns the selected seats into bookings in one transaction.
//
// The seats are row-locked and must all belong to the theater, otherwise
// ErrNotFound is returned and nothing is written.  Seats that are already
// booked, or currently held by a different user, are skipped.  Every other
// seat gets a booking and is marked booked with its hold cleared.  The
// created bookings are returned in seat id order with SeatNumber filled.
func (r *BookingRepo) Confirm(ctx context.Context, in ConfirmInput) ([]model.BookingDetail, error) {
	if hasZero(in.SeatIDs) {
		return nil, ErrNotFound
	}
	ids := UniqueIDs(in.SeatIDs)
	if len(ids) == 0 {
		return []model.BookingDetail{}, nil
	}
	ph, idArgs := inClause(ids)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE theater_id = ? AND id IN (`+ph+`) ORDER BY id FOR UPDATE`,
		append([]any{in.TheaterID}, idArgs...)...)
	if err != nil {
		return nil, err
	}
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			rows.Close()
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(seats) != len(ids) {
		return nil, ErrNotFound
	}

	now := in.Now.UTC()
	out := make([]model.BookingDetail, 0, len(seats))
	for _, s := range seats {
		if s.IsBooked {
			continue
		}
		if s.IsReserved && s.ReservedBy != nil && *s.ReservedBy != in.UserID {
			continue
		}
		out = append(out, model.BookingDetail{
			Booking: model.Booking{
				Reference: uuid.NewString(),
				UserID:    in.UserID,
				SeatID:    s.ID,
				MovieID:   in.MovieID,
				TheaterID: in.TheaterID,
				Price:     in.Price,
				BookedAt:  now,
			},
			SeatNumber: s.SeatNumber,
		})
	}

	if len(out) > 0 {
		query := `INSERT INTO bookings (reference, user_id, seat_id, movie_id, theater_id, price, booked_at) VALUES `
		args := make([]any, 0, len(out)*7)
		bookIDs := make([]uint64, 0, len(out))
		for i, b := range out {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?, ?)"
			args = append(args, b.Reference, b.UserID, b.SeatID, b.MovieID, b.TheaterID, b.Price, now)
			bookIDs = append(bookIDs, b.SeatID)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		// Multi-row inserts on InnoDB get consecutive ids starting at the first.
		if first, err := res.LastInsertId(); err == nil {
			for i := range out {
				out[i].ID = uint64(first) + uint64(i)
			}
		}

		bph, bargs := inClause(bookIDs)
		if _, err := tx.ExecContext(ctx,
			`UPDATE seats SET is_booked = 1, is_reserved = 0, reserved_at = NULL, reserved_by = NULL WHERE id IN (`+bph+`)`,
			bargs...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return out, nil
}

// ListByUser returns the user's bookings newest first, joined with movie,
// theater and seat names.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.user_id, b.seat_id, b.movie_id, b.theater_id, b.price, b.booked_at,
		m.name, t.name, t.show_time, s.seat_number
		FROM bookings b
		JOIN movies m ON m.id = b.movie_id
		JOIN theaters t ON t.id = b.theater_id
		JOIN seats s ON s.id = b.seat_id
		WHERE b.user_id = ?
		ORDER BY b.booked_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		var d model.BookingDetail
		if err := rows.Scan(&d.ID, &d.Reference, &d.UserID, &d.SeatID, &d.MovieID, &d.TheaterID, &d.Price, &d.BookedAt,
			&d.MovieName, &d.TheaterName, &d.ShowTime, &d.SeatNumber); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
