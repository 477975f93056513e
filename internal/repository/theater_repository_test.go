package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

func TestTheaterRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	show := time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM theaters WHERE id = ?`)).WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "name", "show_time"}).AddRow(7, 3, "Hall 1", show))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM theaters WHERE id = ?`)).WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "movie_id", "name", "show_time"}))

	repo := NewTheaterRepo(db)
	th, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.Theater{ID: 7, MovieID: 3, Name: "Hall 1", ShowTime: show}, *th)

	_, err = repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTheaterRepo_CreateWithSeats(t *testing.T) {
	show := time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)

	t.Run("inserts theater and seats", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO theaters (movie_id, name, show_time) VALUES (?, ?, ?)`)).
			WithArgs(uint64(3), "Hall 1", show).
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO seats (theater_id, seat_number) VALUES (?, ?),(?, ?)`)).
			WithArgs(uint64(7), "A1", uint64(7), "A2").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		th := &model.Theater{MovieID: 3, Name: "Hall 1", ShowTime: show}
		require.NoError(t, NewTheaterRepo(db).CreateWithSeats(context.Background(), th, []string{"A1", "A2"}))
		assert.Equal(t, uint64(7), th.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown movie", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO theaters`)).
			WillReturnError(&mysql.MySQLError{Number: 1452, Message: "fk"})
		mock.ExpectRollback()

		err := NewTheaterRepo(db).CreateWithSeats(context.Background(), &model.Theater{MovieID: 99}, []string{"A1"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
