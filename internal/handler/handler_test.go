package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

var nop = zap.NewNop()

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// asUser stands in for JWTAuth.
func asUser(id uint64, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserIDKey, id)
			c.Set(middleware.RoleKey, role)
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

func newRequest(method, target string) *http.Request { return httptest.NewRequest(method, target, nil) }

func serve(e *echo.Echo, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)
	return rec
}

type mockWorkflow struct{ mock.Mock }

func (m *mockWorkflow) SeatMap(ctx context.Context, theaterID uint64) (*service.SeatMap, error) {
	args := m.Called(ctx, theaterID)
	sm, _ := args.Get(0).(*service.SeatMap)
	return sm, args.Error(1)
}

func (m *mockWorkflow) Hold(ctx context.Context, userID, theaterID uint64, seatIDs []uint64) error {
	return m.Called(ctx, userID, theaterID, seatIDs).Error(0)
}

func (m *mockWorkflow) PaymentSummary(ctx context.Context, userID, theaterID uint64) (*service.PaymentSummary, error) {
	args := m.Called(ctx, userID, theaterID)
	s, _ := args.Get(0).(*service.PaymentSummary)
	return s, args.Error(1)
}

func (m *mockWorkflow) ConfirmPayment(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	args := m.Called(ctx, userID)
	b, _ := args.Get(0).([]model.BookingDetail)
	return b, args.Error(1)
}

func (m *mockWorkflow) Bookings(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	args := m.Called(ctx, userID)
	b, _ := args.Get(0).([]model.BookingDetail)
	return b, args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) List(ctx context.Context, f repository.MovieFilter) ([]model.Movie, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]model.Movie)
	return out, args.Error(1)
}

func (m *mockCatalog) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	args := m.Called(ctx, id)
	mv, _ := args.Get(0).(*model.Movie)
	return mv, args.Error(1)
}

func (m *mockCatalog) ListGenres(ctx context.Context) ([]model.Genre, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]model.Genre)
	return out, args.Error(1)
}

func (m *mockCatalog) ListLanguages(ctx context.Context) ([]model.Language, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]model.Language)
	return out, args.Error(1)
}

func (m *mockCatalog) ListByMovie(ctx context.Context, movieID uint64) ([]model.Theater, error) {
	args := m.Called(ctx, movieID)
	out, _ := args.Get(0).([]model.Theater)
	return out, args.Error(1)
}

func (m *mockCatalog) CreateGenre(ctx context.Context, name string) (model.Genre, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Genre), args.Error(1)
}

func (m *mockCatalog) CreateLanguage(ctx context.Context, name string) (model.Language, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Language), args.Error(1)
}

func (m *mockCatalog) Create(ctx context.Context, mv *model.Movie, genreIDs, languageIDs []uint64) error {
	return m.Called(ctx, mv, genreIDs, languageIDs).Error(0)
}

func (m *mockCatalog) CreateWithSeats(ctx context.Context, t *model.Theater, seatNumbers []string) error {
	return m.Called(ctx, t, seatNumbers).Error(0)
}

func (m *mockCatalog) Summary(ctx context.Context) (*repository.Summary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*repository.Summary)
	return s, args.Error(1)
}

var testTheater = &model.Theater{ID: 7, MovieID: 3, Name: "Hall 1", ShowTime: time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC)}
