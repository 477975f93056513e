package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
)

// Messages shown with the seat map when a hold is refused.
const (
	msgNoSeats     = "Please select at least one seat"
	msgUnavailable = "One or more seats are already reserved"
)

type BookingWorkflow interface {
	SeatMap(ctx context.Context, theaterID uint64) (*service.SeatMap, error)
	Hold(ctx context.Context, userID, theaterID uint64, seatIDs []uint64) error
	PaymentSummary(ctx context.Context, userID, theaterID uint64) (*service.PaymentSummary, error)
	ConfirmPayment(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	Bookings(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
}

// BookingHandler serves seat selection, the mock payment flow and the
// booking confirmation page.  Every route requires JWTAuth.
type BookingHandler struct {
	Svc BookingWorkflow
	Log *zap.Logger
}

func NewBookingHandler(svc BookingWorkflow, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Log: log}
}

func (h *BookingHandler) notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "theater or seat not found"})
}

// SeatSelection handles GET /theater/:id/seats/book/.
func (h *BookingHandler) SeatSelection(c echo.Context) error {
	theaterID, ok := pathID(c, "id")
	if !ok {
		return h.notFound(c)
	}
	sm, err := h.Svc.SeatMap(c.Request().Context(), theaterID)
	if errors.Is(err, repository.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return internalError(c, h.Log, "seat map", err)
	}
	return c.JSON(http.StatusOK, sm)
}

// BookSeats handles POST /theater/:id/seats/book/.  The selection is the
// repeated form field "seats" or a JSON body {"seats": [...]}.  On success
// it redirects to the payment page.
func (h *BookingHandler) BookSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	theaterID, ok := pathID(c, "id")
	if !ok {
		return h.notFound(c)
	}
	seatIDs, err := seatSelection(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	err = h.Svc.Hold(ctx, userID, theaterID, seatIDs)
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/payment/%d/", theaterID))
	case errors.Is(err, service.ErrNoSeats):
		return h.refuse(c, http.StatusBadRequest, msgNoSeats, theaterID)
	case errors.Is(err, repository.ErrSeatUnavailable):
		return h.refuse(c, http.StatusConflict, msgUnavailable, theaterID)
	case errors.Is(err, repository.ErrNotFound):
		return h.notFound(c)
	default:
		return internalError(c, h.Log, "hold seats", err)
	}
}

// refuse re-sends the seat map with an error message.
func (h *BookingHandler) refuse(c echo.Context, status int, msg string, theaterID uint64) error {
	sm, err := h.Svc.SeatMap(c.Request().Context(), theaterID)
	if err != nil {
		return internalError(c, h.Log, "seat map", err)
	}
	return c.JSON(status, echo.Map{"error": msg, "theater": sm.Theater, "seats": sm.Seats})
}

// seatSelection reads the selected seat ids.  Values that are not positive
// integers become 0, which the hold rejects as an unknown seat.
func seatSelection(c echo.Context) ([]uint64, error) {
	var raw []string
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var body struct {
			Seats []any `json:"seats"`
		}
		dec := json.NewDecoder(c.Request().Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		for _, v := range body.Seats {
			raw = append(raw, fmt.Sprint(v))
		}
	} else {
		form, err := c.FormParams()
		if err != nil {
			return nil, err
		}
		raw = form["seats"]
	}
	ids := make([]uint64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			id = 0
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Payment handles GET /payment/:theater_id/.  Without a selection for
// the theater the caller is sent back to /.
func (h *BookingHandler) Payment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	theaterID, ok := pathID(c, "theater_id")
	if !ok {
		return h.notFound(c)
	}
	sum, err := h.Svc.PaymentSummary(c.Request().Context(), userID, theaterID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, sum)
	case errors.Is(err, session.ErrNoSelection):
		return c.Redirect(http.StatusSeeOther, "/")
	case errors.Is(err, repository.ErrNotFound):
		return h.notFound(c)
	default:
		return internalError(c, h.Log, "payment summary", err)
	}
}

// PaymentSuccess handles GET /payment-success/: it confirms the held
// seats and redirects to /booking-success/.
func (h *BookingHandler) PaymentSuccess(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	_, err = h.Svc.ConfirmPayment(c.Request().Context(), userID)
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, "/booking-success/")
	case errors.Is(err, session.ErrNoSelection):
		return c.Redirect(http.StatusSeeOther, "/")
	case errors.Is(err, repository.ErrNotFound):
		return h.notFound(c)
	default:
		return internalError(c, h.Log, "confirm payment", err)
	}
}

// PaymentFailed handles GET /payment-failed/.
func (h *BookingHandler) PaymentFailed(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "failed", "message": "Payment failed"})
}

// BookingSuccess handles GET /booking-success/ and lists the caller's
// bookings.
func (h *BookingHandler) BookingSuccess(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Svc.Bookings(c.Request().Context(), userID)
	if err != nil {
		return internalError(c, h.Log, "list bookings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "confirmed", "message": "Booking confirmed", "bookings": bookings})
}
