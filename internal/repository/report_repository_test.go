package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepo_Summary(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(price), 0), COUNT(*) FROM bookings`)).
		WillReturnRows(sqlmock.NewRows([]string{"rev", "n"}).AddRow(1000, 5))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY n DESC, m.name LIMIT ?`)).WithArgs(TopN).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "n"}).
			AddRow(1, "Dune", 3).
			AddRow(2, "Alien", 2))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY n DESC, t.name LIMIT ?`)).WithArgs(TopN).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "n"}).AddRow(7, "Hall 1", 5))

	s, err := NewReportRepo(db).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), s.TotalRevenue)
	assert.Equal(t, int64(5), s.TotalBookings)
	assert.Equal(t, []RankEntry{{ID: 1, Name: "Dune", Bookings: 3}, {ID: 2, Name: "Alien", Bookings: 2}}, s.TopMovies)
	assert.Equal(t, []RankEntry{{ID: 7, Name: "Hall 1", Bookings: 5}}, s.TopTheaters)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_SummaryEmpty(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings`)).
		WillReturnRows(sqlmock.NewRows([]string{"rev", "n"}).AddRow(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`m.name LIMIT ?`)).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "n"}))
	mock.ExpectQuery(regexp.QuoteMeta(`t.name LIMIT ?`)).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "n"}))

	s, err := NewReportRepo(db).Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s.TotalRevenue)
	assert.Empty(t, s.TopMovies)
	assert.NotNil(t, s.TopTheaters)
	assert.NoError(t, mock.ExpectationsWereMet())
}
