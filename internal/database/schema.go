package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements in dependency order.  Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'CUSTOMER',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS languages (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		image VARCHAR(512) NOT NULL DEFAULT '',
		rating DECIMAL(3,1) NOT NULL DEFAULT 0,
		cast_members TEXT NOT NULL,
		description TEXT NOT NULL,
		trailer_url VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_movies_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id BIGINT UNSIGNED NOT NULL,
		genre_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (movie_id, genre_id),
		CONSTRAINT fk_mg_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
		CONSTRAINT fk_mg_genre FOREIGN KEY (genre_id) REFERENCES genres(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS movie_languages (
		movie_id BIGINT UNSIGNED NOT NULL,
		language_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (movie_id, language_id),
		CONSTRAINT fk_ml_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
		CONSTRAINT fk_ml_language FOREIGN KEY (language_id) REFERENCES languages(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS theaters (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id BIGINT UNSIGNED NOT NULL,
		name VARCHAR(255) NOT NULL,
		show_time DATETIME NOT NULL,
		CONSTRAINT fk_theater_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		theater_id BIGINT UNSIGNED NOT NULL,
		seat_number VARCHAR(16) NOT NULL,
		is_reserved TINYINT(1) NOT NULL DEFAULT 0,
		is_booked TINYINT(1) NOT NULL DEFAULT 0,
		reserved_at DATETIME NULL,
		reserved_by BIGINT UNSIGNED NULL,
		UNIQUE KEY uq_seat_theater_number (theater_id, seat_number),
		INDEX idx_seats_hold (is_reserved, is_booked, reserved_at),
		CONSTRAINT fk_seat_theater FOREIGN KEY (theater_id) REFERENCES theaters(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reference CHAR(36) NOT NULL UNIQUE,
		user_id BIGINT UNSIGNED NOT NULL,
		seat_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		theater_id BIGINT UNSIGNED NOT NULL,
		price INT UNSIGNED NOT NULL DEFAULT 0,
		booked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_booking_seat (seat_id),
		INDEX idx_bookings_user (user_id, booked_at),
		CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_booking_seat FOREIGN KEY (seat_id) REFERENCES seats(id),
		CONSTRAINT fk_booking_movie FOREIGN KEY (movie_id) REFERENCES movies(id),
		CONSTRAINT fk_booking_theater FOREIGN KEY (theater_id) REFERENCES theaters(id)
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
