package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
)

type mockMovies struct{ mock.Mock }

func (m *mockMovies) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	args := m.Called(ctx, id)
	mv, _ := args.Get(0).(*model.Movie)
	return mv, args.Error(1)
}

type mockTheaters struct{ mock.Mock }

func (m *mockTheaters) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	args := m.Called(ctx, id)
	th, _ := args.Get(0).(*model.Theater)
	return th, args.Error(1)
}

type mockSeats struct{ mock.Mock }

func (m *mockSeats) ListByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error) {
	args := m.Called(ctx, theaterID)
	seats, _ := args.Get(0).([]model.Seat)
	return seats, args.Error(1)
}

func (m *mockSeats) ReleaseExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSeats) Hold(ctx context.Context, theaterID, userID uint64, seatIDs []uint64, now time.Time) error {
	return m.Called(ctx, theaterID, userID, seatIDs, now).Error(0)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Confirm(ctx context.Context, in repository.ConfirmInput) ([]model.BookingDetail, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).([]model.BookingDetail)
	return out, args.Error(1)
}

func (m *mockBookings) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]model.BookingDetail)
	return out, args.Error(1)
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Save(ctx context.Context, userID uint64, sel session.Selection) error {
	return m.Called(ctx, userID, sel).Error(0)
}

func (m *mockSessions) Load(ctx context.Context, userID uint64) (session.Selection, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(session.Selection), args.Error(1)
}

func (m *mockSessions) Clear(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return m.Called(ctx, ev).Error(0)
}

var (
	now     = time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	theater = &model.Theater{ID: 7, MovieID: 3, Name: "Hall 1", ShowTime: now.Add(48 * time.Hour)}
	anyArg  = mock.Anything
)

type fixture struct {
	movies   *mockMovies
	theaters *mockTheaters
	seats    *mockSeats
	bookings *mockBookings
	sessions *mockSessions
	events   *mockEvents
	svc      *BookingService
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		movies:   &mockMovies{},
		theaters: &mockTheaters{},
		seats:    &mockSeats{},
		bookings: &mockBookings{},
		sessions: &mockSessions{},
		events:   &mockEvents{},
	}
	f.svc = NewBookingService(f.movies, f.theaters, f.seats, f.bookings, f.sessions, f.events, zap.NewNop(), 5*time.Minute, 200)
	f.svc.now = func() time.Time { return now }
	t.Cleanup(func() {
		mock.AssertExpectationsForObjects(t, f.movies, f.theaters, f.seats, f.bookings, f.sessions, f.events)
	})
	return f
}

func (f *fixture) expectSweep() {
	f.seats.On("ReleaseExpired", anyArg, now.Add(-5*time.Minute)).Return(int64(0), nil).Once()
}

func TestSweep_UsesHoldWindow(t *testing.T) {
	f := newFixture(t)
	f.seats.On("ReleaseExpired", anyArg, now.Add(-5*time.Minute)).Return(int64(4), nil)

	n, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestSeatMap(t *testing.T) {
	f := newFixture(t)
	f.expectSweep()
	f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)
	f.seats.On("ListByTheater", anyArg, uint64(7)).Return([]model.Seat{{ID: 1, TheaterID: 7, SeatNumber: "A1"}}, nil)

	sm, err := f.svc.SeatMap(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, theater, sm.Theater)
	assert.Len(t, sm.Seats, 1)
}

func TestHold(t *testing.T) {
	ctx := context.Background()

	t.Run("holds and saves the selection", func(t *testing.T) {
		f := newFixture(t)
		f.expectSweep()
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)
		f.seats.On("Hold", anyArg, uint64(7), uint64(42), []uint64{1, 2, 1}, now).Return(nil)
		f.sessions.On("Save", anyArg, uint64(42), session.Selection{SeatIDs: []uint64{1, 2}, TheaterID: 7}).Return(nil)

		require.NoError(t, f.svc.Hold(ctx, 42, 7, []uint64{1, 2, 1}))
	})

	t.Run("empty selection", func(t *testing.T) {
		f := newFixture(t)
		f.expectSweep()
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)

		assert.ErrorIs(t, f.svc.Hold(ctx, 42, 7, nil), ErrNoSeats)
	})

	t.Run("unknown theater", func(t *testing.T) {
		f := newFixture(t)
		f.expectSweep()
		f.theaters.On("GetByID", anyArg, uint64(9)).Return(nil, repository.ErrNotFound)

		assert.ErrorIs(t, f.svc.Hold(ctx, 42, 9, []uint64{1}), repository.ErrNotFound)
	})

	t.Run("seat unavailable leaves session alone", func(t *testing.T) {
		f := newFixture(t)
		f.expectSweep()
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)
		f.seats.On("Hold", anyArg, uint64(7), uint64(42), []uint64{1}, now).Return(repository.ErrSeatUnavailable)

		assert.ErrorIs(t, f.svc.Hold(ctx, 42, 7, []uint64{1}), repository.ErrSeatUnavailable)
	})

	t.Run("sweep failure aborts", func(t *testing.T) {
		f := newFixture(t)
		f.seats.On("ReleaseExpired", anyArg, anyArg).Return(int64(0), errors.New("db down"))

		assert.Error(t, f.svc.Hold(ctx, 42, 7, []uint64{1}))
	})
}

func TestPaymentSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("prices the selection", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{SeatIDs: []uint64{1, 2, 3}, TheaterID: 7}, nil)
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)

		sum, err := f.svc.PaymentSummary(ctx, 42, 7)
		require.NoError(t, err)
		assert.Equal(t, uint64(600), sum.Amount)
		assert.Equal(t, uint32(200), sum.UnitPrice)
		assert.Equal(t, []uint64{1, 2, 3}, sum.SeatIDs)
	})

	t.Run("no selection", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{}, session.ErrNoSelection)

		_, err := f.svc.PaymentSummary(ctx, 42, 7)
		assert.ErrorIs(t, err, session.ErrNoSelection)
	})

	t.Run("selection for another theater", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{SeatIDs: []uint64{1}, TheaterID: 8}, nil)

		_, err := f.svc.PaymentSummary(ctx, 42, 7)
		assert.ErrorIs(t, err, session.ErrNoSelection)
	})
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()
	in := repository.ConfirmInput{UserID: 42, MovieID: 3, TheaterID: 7, SeatIDs: []uint64{1, 2}, Price: 200, Now: now}

	t.Run("books, clears and publishes", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{SeatIDs: []uint64{1, 2}, TheaterID: 7}, nil)
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)
		f.bookings.On("Confirm", anyArg, in).Return([]model.BookingDetail{
			{Booking: model.Booking{Reference: "r1", SeatID: 1, Price: 200, BookedAt: now}, SeatNumber: "A1"},
		}, nil)
		f.sessions.On("Clear", anyArg, uint64(42)).Return(nil)
		f.movies.On("GetByID", anyArg, uint64(3)).Return(&model.Movie{ID: 3, Name: "Dune"}, nil)
		f.events.On("PublishBookingConfirmed", anyArg, mock.MatchedBy(func(ev queue.BookingConfirmedEvent) bool {
			return ev.MovieName == "Dune" && ev.Total == 200 &&
				assert.ObjectsAreEqual([]string{"r1"}, ev.References) &&
				assert.ObjectsAreEqual([]string{"A1"}, ev.Seats)
		})).Return(nil)

		got, err := f.svc.ConfirmPayment(ctx, 42)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Dune", got[0].MovieName)
		assert.Equal(t, "Hall 1", got[0].TheaterName)
	})

	t.Run("nothing left to book skips the event", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{SeatIDs: []uint64{1, 2}, TheaterID: 7}, nil)
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)
		f.bookings.On("Confirm", anyArg, in).Return([]model.BookingDetail{}, nil)
		f.sessions.On("Clear", anyArg, uint64(42)).Return(nil)
		f.movies.On("GetByID", anyArg, uint64(3)).Return(&model.Movie{ID: 3, Name: "Dune"}, nil)

		got, err := f.svc.ConfirmPayment(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("publish failure is not surfaced", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{SeatIDs: []uint64{1, 2}, TheaterID: 7}, nil)
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)
		f.bookings.On("Confirm", anyArg, in).Return([]model.BookingDetail{{Booking: model.Booking{Reference: "r1"}}}, nil)
		f.sessions.On("Clear", anyArg, uint64(42)).Return(errors.New("redis down"))
		f.movies.On("GetByID", anyArg, uint64(3)).Return(nil, repository.ErrNotFound)
		f.events.On("PublishBookingConfirmed", anyArg, anyArg).Return(errors.New("broker down"))

		_, err := f.svc.ConfirmPayment(ctx, 42)
		assert.NoError(t, err)
	})

	t.Run("missing seat keeps the session", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{SeatIDs: []uint64{1, 2}, TheaterID: 7}, nil)
		f.theaters.On("GetByID", anyArg, uint64(7)).Return(theater, nil)
		f.bookings.On("Confirm", anyArg, in).Return(nil, repository.ErrNotFound)

		_, err := f.svc.ConfirmPayment(ctx, 42)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("no selection", func(t *testing.T) {
		f := newFixture(t)
		f.sessions.On("Load", anyArg, uint64(42)).Return(session.Selection{}, session.ErrNoSelection)

		_, err := f.svc.ConfirmPayment(ctx, 42)
		assert.ErrorIs(t, err, session.ErrNoSelection)
	})
}
