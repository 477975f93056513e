package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type MovieCatalog interface {
	List(ctx context.Context, f repository.MovieFilter) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)
	ListLanguages(ctx context.Context) ([]model.Language, error)
}

type TheaterLister interface {
	ListByMovie(ctx context.Context, movieID uint64) ([]model.Theater, error)
}

// CatalogHandler serves the public movie pages.
type CatalogHandler struct {
	Movies   MovieCatalog
	Theaters TheaterLister
	Log      *zap.Logger
}

func NewCatalogHandler(movies MovieCatalog, theaters TheaterLister, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Movies: movies, Theaters: theaters, Log: log}
}

// Index handles GET /.  Optional query parameters: search (substring of
// the name, case-insensitive), genre and language (ids).  The filter
// lists are returned alongside the movies.
func (h *CatalogHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	search := strings.TrimSpace(c.QueryParam("search"))
	movies, err := h.Movies.List(ctx, repository.MovieFilter{
		Search:     search,
		GenreID:    queryID(c, "genre"),
		LanguageID: queryID(c, "language"),
	})
	if err != nil {
		return internalError(c, h.Log, "list movies", err)
	}
	genres, err := h.Movies.ListGenres(ctx)
	if err != nil {
		return internalError(c, h.Log, "list genres", err)
	}
	languages, err := h.Movies.ListLanguages(ctx)
	if err != nil {
		return internalError(c, h.Log, "list languages", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movies":    movies,
		"genres":    genres,
		"languages": languages,
		"search":    search,
	})
}

// MovieDetail handles GET /movie/:id/.
func (h *CatalogHandler) MovieDetail(c echo.Context) error {
	m, ok, err := h.movie(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": m})
}

// TheaterList handles GET /movie/:id/theaters/.
func (h *CatalogHandler) TheaterList(c echo.Context) error {
	m, ok, err := h.movie(c)
	if !ok {
		return err
	}
	theaters, err := h.Theaters.ListByMovie(c.Request().Context(), m.ID)
	if err != nil {
		return internalError(c, h.Log, "list theaters", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": m, "theaters": theaters})
}

// movie loads the movie named by the :id parameter.  ok is false when a
// response has already been written.
func (h *CatalogHandler) movie(c echo.Context) (*model.Movie, bool, error) {
	id, valid := pathID(c, "id")
	if !valid {
		return nil, false, c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		return nil, false, internalError(c, h.Log, "get movie", err)
	}
	return m, true, nil
}
