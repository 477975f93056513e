package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MovieFilter narrows the catalog listing.  Zero values disable a filter.
type MovieFilter struct {
	Search     string // case-insensitive substring of the movie name
	GenreID    uint64
	LanguageID uint64
}

// MovieRepo provides access to movies and their genre/language reference
// data.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to db.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// likeEscaper makes a search term match literally inside LIKE, whose
// default escape character in MySQL is the backslash.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const movieColumns = `m.id, m.name, m.image, m.rating, m.cast_members, m.description, m.trailer_url, m.created_at`

func scanMovie(sc interface{ Scan(...any) error }, m *model.Movie) error {
	return sc.Scan(&m.ID, &m.Name, &m.Image, &m.Rating, &m.Cast, &m.Description, &m.TrailerURL, &m.CreatedAt)
}

// List returns movies matching the filter ordered by id.  Genre and
// language filters use EXISTS so a movie is returned at most once.
func (r *MovieRepo) List(ctx context.Context, f MovieFilter) ([]model.Movie, error) {
	where := []string{}
	args := []any{}

	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "LOWER(m.name) LIKE ?")
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(s))+"%")
	}
	if f.GenreID != 0 {
		where = append(where, "EXISTS (SELECT 1 FROM movie_genres mg WHERE mg.movie_id = m.id AND mg.genre_id = ?)")
		args = append(args, f.GenreID)
	}
	if f.LanguageID != 0 {
		where = append(where, "EXISTS (SELECT 1 FROM movie_languages ml WHERE ml.movie_id = m.id AND ml.language_id = ?)")
		args = append(args, f.LanguageID)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies m WHERE `+cond+` ORDER BY m.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID returns a movie with its genres and languages, or ErrNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies m WHERE m.id = ?`, id), &m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	m.Genres, err = r.listGenres(ctx,
		`SELECT g.id, g.name FROM genres g JOIN movie_genres mg ON mg.genre_id = g.id WHERE mg.movie_id = ? ORDER BY g.name`, id)
	if err != nil {
		return nil, err
	}
	m.Languages, err = r.listLanguages(ctx,
		`SELECT l.id, l.name FROM languages l JOIN movie_languages ml ON ml.language_id = l.id WHERE ml.movie_id = ? ORDER BY l.name`, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListGenres returns every genre ordered by name.
func (r *MovieRepo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return r.listGenres(ctx, `SELECT g.id, g.name FROM genres g ORDER BY g.name`)
}

// ListLanguages returns every language ordered by name.
func (r *MovieRepo) ListLanguages(ctx context.Context) ([]model.Language, error) {
	return r.listLanguages(ctx, `SELECT l.id, l.name FROM languages l ORDER BY l.name`)
}

func (r *MovieRepo) listGenres(ctx context.Context, q string, args ...any) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Genre, 0)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *MovieRepo) listLanguages(ctx context.Context, q string, args ...any) ([]model.Language, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Language, 0)
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateGenre inserts a genre.  A duplicate name yields ErrConflict.
func (r *MovieRepo) CreateGenre(ctx context.Context, name string) (model.Genre, error) {
	id, err := r.insertName(ctx, `INSERT INTO genres (name) VALUES (?)`, name)
	return model.Genre{ID: id, Name: name}, err
}

// CreateLanguage inserts a language.  A duplicate name yields ErrConflict.
func (r *MovieRepo) CreateLanguage(ctx context.Context, name string) (model.Language, error) {
	id, err := r.insertName(ctx, `INSERT INTO languages (name) VALUES (?)`, name)
	return model.Language{ID: id, Name: name}, err
}

func (r *MovieRepo) insertName(ctx context.Context, q, name string) (uint64, error) {
	res, err := r.db.ExecContext(ctx, q, name)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Create inserts a movie and links it to the given genres and languages in
// one transaction.  Unknown genre or language ids surface as ErrNotFound.
// The generated ID is stored on m.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie, genreIDs, languageIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO movies (name, image, rating, cast_members, description, trailer_url) VALUES (?, ?, ?, ?, ?, ?)`,
		m.Name, m.Image, m.Rating, m.Cast, m.Description, m.TrailerURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	if err := linkTx(ctx, tx, "movie_genres", "genre_id", m.ID, genreIDs); err != nil {
		return fmt.Errorf("link genres: %w", err)
	}
	if err := linkTx(ctx, tx, "movie_languages", "language_id", m.ID, languageIDs); err != nil {
		return fmt.Errorf("link languages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func linkTx(ctx context.Context, tx *sql.Tx, table, column string, movieID uint64, ids []uint64) error {
	ids = UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	query := `INSERT INTO ` + table + ` (movie_id, ` + column + `) VALUES `
	args := make([]any, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, movieID, id)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyMiss(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
