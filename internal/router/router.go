// Package router registers every HTTP route and the middleware in front of
// it.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Handlers groups the endpoint implementations the router mounts.
type Handlers struct {
	Health    echo.HandlerFunc
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Booking   *handler.BookingHandler
	Dashboard *handler.DashboardHandler
	Admin     *handler.AdminHandler
}

// Edge holds the optional Redis backed middleware.  Nil entries are
// skipped.
type Edge struct {
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Register mounts all routes on e.  Routes keep their trailing slash.
func Register(e *echo.Echo, h Handlers, edge Edge, jwtSecret string) {
	e.GET("/healthz", h.Health)

	// catalog
	cached := chain(edge.Cache)
	e.GET("/", h.Catalog.Index, cached...)
	e.GET("/movie/:id/", h.Catalog.MovieDetail, cached...)
	e.GET("/movie/:id/theaters/", h.Catalog.TheaterList, cached...)

	a := e.Group("/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/logout", h.Auth.Logout)

	// signed-in users
	user := chain(middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleCustomer, model.RoleStaff))
	e.GET("/me", h.Auth.Me, user...)
	e.GET("/theater/:id/seats/book/", h.Booking.SeatSelection, user...)
	e.POST("/theater/:id/seats/book/", h.Booking.BookSeats, append(user, chain(edge.RateLimit)...)...)
	e.GET("/payment/:theater_id/", h.Booking.Payment, user...)
	e.GET("/payment-success/", h.Booking.PaymentSuccess, user...)
	e.GET("/payment-failed/", h.Booking.PaymentFailed, user...)
	e.GET("/booking-success/", h.Booking.BookingSuccess, user...)

	staff := chain(middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleStaff))
	e.GET("/admin-dashboard/", h.Dashboard.Show, staff...)
	ad := e.Group("/admin", staff...)
	ad.POST("/genres", h.Admin.CreateGenre)
	ad.POST("/languages", h.Admin.CreateLanguage)
	ad.POST("/movies", h.Admin.CreateMovie)
	ad.POST("/theaters", h.Admin.CreateTheater)
}
