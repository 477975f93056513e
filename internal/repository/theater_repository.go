package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TheaterRepo provides access to theaters (movie screenings).
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo returns a TheaterRepo bound to db.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{db: db} }

// GetByID returns the theater or ErrNotFound.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	var t model.Theater
	err := r.db.QueryRowContext(ctx,
		`SELECT id, movie_id, name, show_time FROM theaters WHERE id = ?`, id).
		Scan(&t.ID, &t.MovieID, &t.Name, &t.ShowTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByMovie returns the theaters showing a movie ordered by showtime.
func (r *TheaterRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Theater, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, movie_id, name, show_time FROM theaters WHERE movie_id = ? ORDER BY show_time, id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Theater, 0)
	for rows.Next() {
		var t model.Theater
		if err := rows.Scan(&t.ID, &t.MovieID, &t.Name, &t.ShowTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateWithSeats inserts a theater and its seats in one transaction.
// seatNumbers must be unique; the generated ID is stored on t.
func (r *TheaterRepo) CreateWithSeats(ctx context.Context, t *model.Theater, seatNumbers []string) error {
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

	res, err := tx.ExecContext(ctx,
		`INSERT INTO theaters (movie_id, name, show_time) VALUES (?, ?, ?)`,
		t.MovieID, t.Name, t.ShowTime.UTC())
	if err != nil {
		if isForeignKeyMiss(err) {
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	if len(seatNumbers) > 0 {
		query := `INSERT INTO seats (theater_id, seat_number) VALUES `
		args := make([]any, 0, len(seatNumbers)*2)
		for i, n := range seatNumbers {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, t.ID, n)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isDuplicate(err) {
				return ErrConflict
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
