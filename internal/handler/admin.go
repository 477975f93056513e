package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type MovieAdmin interface {
	CreateGenre(ctx context.Context, name string) (model.Genre, error)
	CreateLanguage(ctx context.Context, name string) (model.Language, error)
	Create(ctx context.Context, m *model.Movie, genreIDs, languageIDs []uint64) error
}

type TheaterAdmin interface {
	CreateWithSeats(ctx context.Context, t *model.Theater, seatNumbers []string) error
}

// AdminHandler lets staff maintain the catalog.  Purge, when set, is
// called after every successful write to drop cached catalog pages.
type AdminHandler struct {
	Movies   MovieAdmin
	Theaters TheaterAdmin
	Purge    func(ctx context.Context) error
	Log      *zap.Logger
}

func NewAdminHandler(movies MovieAdmin, theaters TheaterAdmin, purge func(ctx context.Context) error, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Movies: movies, Theaters: theaters, Purge: purge, Log: log}
}

type nameReq struct {
	Name string `json:"name" validate:"required,max=100"`
}

type movieReq struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Image       string   `json:"image" validate:"max=512"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=10"`
	Cast        string   `json:"cast"`
	Description string   `json:"description"`
	TrailerURL  string   `json:"trailer_url" validate:"omitempty,url,max=512"`
	GenreIDs    []uint64 `json:"genre_ids" validate:"dive,gt=0"`
	LanguageIDs []uint64 `json:"language_ids" validate:"dive,gt=0"`
}

type theaterReq struct {
	MovieID     uint64    `json:"movie_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=255"`
	ShowTime    time.Time `json:"show_time" validate:"required"`
	Rows        int       `json:"rows" validate:"required,min=1,max=26"`
	SeatsPerRow int       `json:"seats_per_row" validate:"required,min=1,max=50"`
}

func (h *AdminHandler) purge(c echo.Context) {
	if h.Purge == nil {
		return
	}
	if err := h.Purge(c.Request().Context()); err != nil {
		h.Log.Warn("catalog cache purge failed", zap.Error(err))
	}
}

// CreateGenre handles POST /admin/genres.
func (h *AdminHandler) CreateGenre(c echo.Context) error {
	var req nameReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	g, err := h.Movies.CreateGenre(c.Request().Context(), strings.TrimSpace(req.Name))
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
	}
	if err != nil {
		return internalError(c, h.Log, "create genre", err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, g)
}

// CreateLanguage handles POST /admin/languages.
func (h *AdminHandler) CreateLanguage(c echo.Context) error {
	var req nameReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	l, err := h.Movies.CreateLanguage(c.Request().Context(), strings.TrimSpace(req.Name))
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "language already exists"})
	}
	if err != nil {
		return internalError(c, h.Log, "create language", err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, l)
}

// CreateMovie handles POST /admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req movieReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	m := &model.Movie{
		Name:        strings.TrimSpace(req.Name),
		Image:       req.Image,
		Rating:      req.Rating,
		Cast:        req.Cast,
		Description: req.Description,
		TrailerURL:  req.TrailerURL,
	}
	err := h.Movies.Create(c.Request().Context(), m, req.GenreIDs, req.LanguageIDs)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown genre or language"})
	}
	if err != nil {
		return internalError(c, h.Log, "create movie", err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, m)
}

// CreateTheater handles POST /admin/theaters.  Seats are generated row by
// row as A1..A<n>, B1.. and so on.
func (h *AdminHandler) CreateTheater(c echo.Context) error {
	var req theaterReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	t := &model.Theater{MovieID: req.MovieID, Name: strings.TrimSpace(req.Name), ShowTime: req.ShowTime.UTC()}
	seats := seatNumbers(req.Rows, req.SeatsPerRow)
	err := h.Theaters.CreateWithSeats(c.Request().Context(), t, seats)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate seat number"})
	case err != nil:
		return internalError(c, h.Log, "create theater", err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, echo.Map{"theater": t, "seats": len(seats)})
}

func seatNumbers(rows, perRow int) []string {
	out := make([]string, 0, rows*perRow)
	for r := 0; r < rows; r++ {
		label := indexToRowLabel(r)
		for n := 1; n <= perRow; n++ {
			out = append(out, label+strconv.Itoa(n))
		}
	}
	return out
}

// indexToRowLabel converts a zero-based index to A, B, ..., Z, AA, AB...
func indexToRowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []byte
	for {
		res = append(res, byte('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
