// Package service implements the booking workflow on top of the
// repositories: sweeping expired holds, holding seats, the mock payment
// summary and the confirmation that turns holds into bookings.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
)

// ErrNoSeats is returned by Hold when the selection is empty.
var ErrNoSeats = errors.New("no seats selected")

type MovieStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}

type TheaterStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Theater, error)
}

type SeatStore interface {
	ListByTheater(ctx context.Context, theaterID uint64) ([]model.Seat, error)
	ReleaseExpired(ctx context.Context, cutoff time.Time) (int64, error)
	Hold(ctx context.Context, theaterID, userID uint64, seatIDs []uint64, now time.Time) error
}

type BookingStore interface {
	Confirm(ctx context.Context, in repository.ConfirmInput) ([]model.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
}

type SessionStore interface {
	Save(ctx context.Context, userID uint64, sel session.Selection) error
	Load(ctx context.Context, userID uint64) (session.Selection, error)
	Clear(ctx context.Context, userID uint64) error
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// SeatMap is a theater with the current state of all its seats.
type SeatMap struct {
	Theater *model.Theater `json:"theater"`
	Seats   []model.Seat   `json:"seats"`
}

// PaymentSummary is what the mock payment page shows.
type PaymentSummary struct {
	Theater   *model.Theater `json:"theater"`
	SeatIDs   []uint64       `json:"seat_ids"`
	UnitPrice uint32         `json:"unit_price"`
	Amount    uint64         `json:"amount"`
}

// BookingService coordinates seat holds, the session and confirmations.
type BookingService struct {
	movies    MovieStore
	theaters  TheaterStore
	seats     SeatStore
	bookings  BookingStore
	sessions  SessionStore
	events    EventPublisher
	log       *zap.Logger
	window    time.Duration
	seatPrice uint32
	now       func() time.Time
}

// NewBookingService wires the workflow.  events may be nil to disable
// publishing.
func NewBookingService(movies MovieStore, theaters TheaterStore, seats SeatStore, bookings BookingStore,
	sessions SessionStore, events EventPublisher, log *zap.Logger, holdWindow time.Duration, seatPrice uint32) *BookingService {
	return &BookingService{
		movies:    movies,
		theaters:  theaters,
		seats:     seats,
		bookings:  bookings,
		sessions:  sessions,
		events:    events,
		log:       log,
		window:    holdWindow,
		seatPrice: seatPrice,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SeatPrice is the flat per-seat price.
func (s *BookingService) SeatPrice() uint32 { return s.seatPrice }

// Sweep releases every hold older than the hold window and returns the
// number of seats released.
func (s *BookingService) Sweep(ctx context.Context) (int64, error) {
	n, err := s.seats.ReleaseExpired(ctx, s.now().Add(-s.window))
	if err != nil {
		return 0, fmt.Errorf("release expired holds: %w", err)
	}
	if n > 0 {
		s.log.Info("released expired holds", zap.Int64("seats", n))
	}
	return n, nil
}

// SeatMap sweeps expired holds and returns the theater's seats.
func (s *BookingService) SeatMap(ctx context.Context, theaterID uint64) (*SeatMap, error) {
	if _, err := s.Sweep(ctx); err != nil {
		return nil, err
	}
	return s.seatMap(ctx, theaterID)
}

func (s *BookingService) seatMap(ctx context.Context, theaterID uint64) (*SeatMap, error) {
	th, err := s.theaters.GetByID(ctx, theaterID)
	if err != nil {
		return nil, fmt.Errorf("get theater: %w", err)
	}
	seats, err := s.seats.ListByTheater(ctx, theaterID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	return &SeatMap{Theater: th, Seats: seats}, nil
}

// Hold reserves seatIDs of a theater for the user and records the
// selection in the user's session.
//
// Expired holds are swept first.  An unknown theater or a seat outside it
// yields repository.ErrNotFound, an empty selection ErrNoSeats and a seat
// that is already held or booked repository.ErrSeatUnavailable.  Nothing is
// held unless every seat is.
func (s *BookingService) Hold(ctx context.Context, userID, theaterID uint64, seatIDs []uint64) error {
	if _, err := s.Sweep(ctx); err != nil {
		return err
	}
	if _, err := s.theaters.GetByID(ctx, theaterID); err != nil {
		return fmt.Errorf("get theater: %w", err)
	}
	if len(seatIDs) == 0 {
		return ErrNoSeats
	}
	if err := s.seats.Hold(ctx, theaterID, userID, seatIDs, s.now()); err != nil {
		return fmt.Errorf("hold seats: %w", err)
	}
	sel := session.Selection{SeatIDs: repository.UniqueIDs(seatIDs), TheaterID: theaterID}
	if err := s.sessions.Save(ctx, userID, sel); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	s.log.Info("seats held", zap.Uint64("user_id", userID), zap.Uint64("theater_id", theaterID), zap.Uint64s("seats", sel.SeatIDs))
	return nil
}

// PaymentSummary prices the user's current selection for theaterID.
// session.ErrNoSelection is returned when there is no selection for that
// theater.
func (s *BookingService) PaymentSummary(ctx context.Context, userID, theaterID uint64) (*PaymentSummary, error) {
	sel, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sel.TheaterID != theaterID {
		return nil, session.ErrNoSelection
	}
	th, err := s.theaters.GetByID(ctx, theaterID)
	if err != nil {
		return nil, fmt.Errorf("get theater: %w", err)
	}
	return &PaymentSummary{
		Theater:   th,
		SeatIDs:   sel.SeatIDs,
		UnitPrice: s.seatPrice,
		Amount:    uint64(len(sel.SeatIDs)) * uint64(s.seatPrice),
	}, nil
}

// ConfirmPayment books the seats of the user's selection and clears the
// session.  Seats booked meanwhile by someone else are skipped, so the
// result may be shorter than the selection or empty.
// session.ErrNoSelection is returned when there is nothing to confirm.
func (s *BookingService) ConfirmPayment(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	sel, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	th, err := s.theaters.GetByID(ctx, sel.TheaterID)
	if err != nil {
		return nil, fmt.Errorf("get theater: %w", err)
	}

	booked, err := s.bookings.Confirm(ctx, repository.ConfirmInput{
		UserID:    userID,
		MovieID:   th.MovieID,
		TheaterID: th.ID,
		SeatIDs:   sel.SeatIDs,
		Price:     s.seatPrice,
		Now:       s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("confirm bookings: %w", err)
	}

	if err := s.sessions.Clear(ctx, userID); err != nil {
		s.log.Warn("clear selection failed", zap.Uint64("user_id", userID), zap.Error(err))
	}

	var movieName string
	if m, err := s.movies.GetByID(ctx, th.MovieID); err == nil {
		movieName = m.Name
	}
	for i := range booked {
		booked[i].MovieName = movieName
		booked[i].TheaterName = th.Name
		booked[i].ShowTime = th.ShowTime
	}

	s.log.Info("payment confirmed",
		zap.Uint64("user_id", userID),
		zap.Uint64("theater_id", th.ID),
		zap.Int("selected", len(sel.SeatIDs)),
		zap.Int("booked", len(booked)))
	s.publish(ctx, userID, th, booked)
	return booked, nil
}

func (s *BookingService) publish(ctx context.Context, userID uint64, th *model.Theater, booked []model.BookingDetail) {
	if s.events == nil || len(booked) == 0 {
		return
	}
	ev := queue.BookingConfirmedEvent{
		UserID:      userID,
		MovieID:     th.MovieID,
		MovieName:   booked[0].MovieName,
		TheaterID:   th.ID,
		TheaterName: th.Name,
		ShowTime:    th.ShowTime,
		ConfirmedAt: booked[0].BookedAt,
	}
	for _, b := range booked {
		ev.References = append(ev.References, b.Reference)
		ev.Seats = append(ev.Seats, b.SeatNumber)
		ev.Total += uint64(b.Price)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.PublishBookingConfirmed(ctx, ev); err != nil {
		s.log.Warn("publish booking event failed", zap.Uint64("user_id", userID), zap.Error(err))
	}
}

// Bookings lists the user's bookings newest first.
func (s *BookingService) Bookings(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}
