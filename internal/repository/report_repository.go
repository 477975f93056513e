package repository

import (
	"context"
	"database/sql"
)

// TopN is the number of entries in each popularity ranking.
const TopN = 5

// RankEntry is one row of a popularity ranking.
type RankEntry struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Bookings int64  `json:"bookings"`
}

// Summary aggregates every booking ever made.
type Summary struct {
	TotalRevenue  int64       `json:"total_revenue"`
	TotalBookings int64       `json:"total_bookings"`
	TopMovies     []RankEntry `json:"top_movies"`
	TopTheaters   []RankEntry `json:"top_theaters"`
}

// ReportRepo runs read-only aggregate queries for the staff dashboard.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a ReportRepo bound to db.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Summary computes revenue, booking count and the top movies and theaters
// by booking count.  Ties are broken by name.
func (r *ReportRepo) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price), 0), COUNT(*) FROM bookings`).
		Scan(&s.TotalRevenue, &s.TotalBookings); err != nil {
		return nil, err
	}

	var err error
	s.TopMovies, err = r.rank(ctx, `SELECT m.id, m.name, COUNT(b.id) AS n
		FROM bookings b JOIN movies m ON m.id = b.movie_id
		GROUP BY m.id, m.name
		ORDER BY n DESC, m.name
		LIMIT ?`)
	if err != nil {
		return nil, err
	}
	s.TopTheaters, err = r.rank(ctx, `SELECT t.id, t.name, COUNT(b.id) AS n
		FROM bookings b JOIN theaters t ON t.id = b.theater_id
		GROUP BY t.id, t.name
		ORDER BY n DESC, t.name
		LIMIT ?`)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ReportRepo) rank(ctx context.Context, q string) ([]RankEntry, error) {
	rows, err := r.db.QueryContext(ctx, q, TopN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RankEntry, 0, TopN)
	for rows.Next() {
		var e RankEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Bookings); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
