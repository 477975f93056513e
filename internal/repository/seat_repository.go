package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// SeatRepo provides access to the seat inventory of theaters.  Holds live
// directly on the seat row (is_reserved, reserved_at, reserved_by); all
// timestamps are UTC.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to db.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatColumns = `id, theater_id, seat_number, is_reserved, is_booked, reserved_at, reserved_by`

func scanSeat(sc interface{ Scan(...any) error }, s *model.Seat) error {
	var (
		reservedAt sql.NullTime
		reservedBy sql.NullInt64
	)
	if err := sc.Scan(&s.ID, &s.TheaterID, &s.SeatNumber, &s.IsReserved, &s.IsBooked, &reservedAt, &reservedBy); err != nil {
		return err
	}
	s.ReservedAt, s.ReservedBy = nil, nil
	if reservedAt.Valid {
		t := reservedAt.Time
		s.ReservedAt = &t
	}
	if reservedBy.Valid {
		u := uint64(reservedBy.Int64)
		s.ReservedBy = &u
	}
	return nil
}

// ListByTheater returns every seat of a theater.  Seats are ordered by id,
// which follows row-major creation order.
func (r *SeatRepo) ListByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE theater_id = ? ORDER BY id`, theaterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReleaseExpired clears every hold placed at or before cutoff and returns
// the number of seats released.  Booked seats are never touched.
func (r *SeatRepo) ReleaseExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats SET is_reserved = 0, reserved_at = NULL, reserved_by = NULL
		 WHERE is_reserved = 1 AND is_booked = 0 AND reserved_at <= ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Hold reserves seatIDs of a theater for userID, all or nothing.
//
// ErrNotFound is returned when any id is not a seat of the theater, and
// ErrSeatUnavailable when any seat is already booked or held.  In both
// cases no seat is modified.  Duplicate ids count once.
func (r *SeatRepo) Hold(ctx context.Context, theaterID, userID uint64, seatIDs []uint64, now time.Time) error {
	if hasZero(seatIDs) {
		return ErrNotFound
	}
	ids := UniqueIDs(seatIDs)
	if len(ids) == 0 {
		return ErrNotFound
	}
	ph, idArgs := inClause(ids)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var found int
	args := append([]any{theaterID}, idArgs...)
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seats WHERE theater_id = ? AND id IN (`+ph+`)`, args...).Scan(&found); err != nil {
		return err
	}
	if found != len(ids) {
		return ErrNotFound
	}

	args = append([]any{now.UTC(), userID, theaterID}, idArgs...)
	res, err := tx.ExecContext(ctx,
		`UPDATE seats SET is_reserved = 1, reserved_at = ?, reserved_by = ?
		 WHERE theater_id = ? AND id IN (`+ph+`) AND is_booked = 0 AND is_reserved = 0`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return ErrSeatUnavailable
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func hasZero(ids []uint64) bool {
	for _, id := range ids {
		if id == 0 {
			return true
		}
	}
	return false
}
