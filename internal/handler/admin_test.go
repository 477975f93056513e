package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

func adminEcho(cat *mockCatalog, purged *int) *echo.Echo {
	e := newEcho()
	h := NewAdminHandler(cat, cat, func(context.Context) error { *purged++; return nil }, nop)
	e.POST("/admin/genres", h.CreateGenre)
	e.POST("/admin/languages", h.CreateLanguage)
	e.POST("/admin/movies", h.CreateMovie)
	e.POST("/admin/theaters", h.CreateTheater)
	return e
}

func TestAdminCreateGenre(t *testing.T) {
	cat := &mockCatalog{}
	cat.On("CreateGenre", mock.Anything, "Drama").Return(model.Genre{ID: 1, Name: "Drama"}, nil).Once()
	cat.On("CreateGenre", mock.Anything, "Drama").Return(model.Genre{}, repository.ErrConflict).Once()
	var purged int
	e := adminEcho(cat, &purged)

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/admin/genres", echo.MIMEApplicationJSON, jsonBody(`{"name":" Drama "}`)).Code)
	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/admin/genres", echo.MIMEApplicationJSON, jsonBody(`{"name":"Drama"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/admin/genres", echo.MIMEApplicationJSON, jsonBody(`{"name":""}`)).Code)
	assert.Equal(t, 1, purged)
}

func TestAdminCreateMovie(t *testing.T) {
	cat := &mockCatalog{}
	cat.On("Create", mock.Anything, mock.MatchedBy(func(m *model.Movie) bool { return m.Name == "Dune" }), []uint64{2}, []uint64(nil)).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Movie).ID = 11 }).
		Return(nil)
	var purged int
	e := adminEcho(cat, &purged)

	rec := do(e, http.MethodPost, "/admin/movies", echo.MIMEApplicationJSON, jsonBody(`{"name":"Dune","rating":8.1,"genre_ids":[2]}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":11`)

	rec = do(e, http.MethodPost, "/admin/movies", echo.MIMEApplicationJSON, jsonBody(`{"name":"Dune","rating":11}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":"lte=10"`)
}

func TestAdminCreateTheater(t *testing.T) {
	show := time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)
	cat := &mockCatalog{}
	cat.On("CreateWithSeats", mock.Anything,
		&model.Theater{MovieID: 3, Name: "Hall 1", ShowTime: show},
		[]string{"A1", "A2", "A3", "B1", "B2", "B3"}).Return(nil)
	cat.On("CreateWithSeats", mock.Anything, mock.MatchedBy(func(t *model.Theater) bool { return t.MovieID == 99 }), mock.Anything).
		Return(repository.ErrNotFound)
	var purged int
	e := adminEcho(cat, &purged)

	rec := do(e, http.MethodPost, "/admin/theaters", echo.MIMEApplicationJSON,
		jsonBody(`{"movie_id":3,"name":"Hall 1","show_time":"2026-02-01T20:00:00Z","rows":2,"seats_per_row":3}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seats":6`)

	rec = do(e, http.MethodPost, "/admin/theaters", echo.MIMEApplicationJSON,
		jsonBody(`{"movie_id":99,"name":"Hall 1","show_time":"2026-02-01T20:00:00Z","rows":1,"seats_per_row":1}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/admin/theaters", echo.MIMEApplicationJSON,
		jsonBody(`{"movie_id":3,"name":"Hall 1","show_time":"2026-02-01T20:00:00Z","rows":0,"seats_per_row":3}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, purged)
}

func TestIndexToRowLabel(t *testing.T) {
	for i, want := range map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ", 702: "AAA", -1: ""} {
		assert.Equal(t, want, indexToRowLabel(i), i)
	}
}
