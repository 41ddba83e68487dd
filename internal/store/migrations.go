package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Схема базы данных. Ограничения уникальности и внешние ключи здесь - не
// декорация: на них держится корректность при конкуренции. pk_flags закрывает
// гонку двойной жалобы, pk_watches - двойной отметки о просмотре,
// uq_user_movie_review - второго отзыва, fk_review_watch - создания отзыва
// параллельно с каскадным удалением записи о просмотре.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		CONSTRAINT uq_users_username UNIQUE (username),
		CONSTRAINT uq_users_email UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id           UUID PRIMARY KEY,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		release_year INT NOT NULL,
		director     TEXT NOT NULL DEFAULT '',
		genres       TEXT[] NOT NULL DEFAULT '{}',
		poster_url   TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS watches (
		user_id    UUID NOT NULL REFERENCES users (id),
		movie_id   UUID NOT NULL REFERENCES movies (id),
		watched_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT pk_watches PRIMARY KEY (user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id                   UUID PRIMARY KEY,
		user_id              UUID NOT NULL,
		movie_id             UUID NOT NULL,
		content              TEXT NOT NULL,
		direction_score      INT NOT NULL,
		screenplay_score     INT NOT NULL,
		cinematography_score INT NOT NULL,
		general_score        INT NOT NULL,
		likes_count          BIGINT NOT NULL DEFAULT 0,
		hidden               BOOLEAN NOT NULL DEFAULT FALSE,
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL,
		CONSTRAINT uq_user_movie_review UNIQUE (user_id, movie_id),
		CONSTRAINT fk_review_watch FOREIGN KEY (user_id, movie_id)
			REFERENCES watches (user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS flags (
		reporter_id UUID NOT NULL REFERENCES users (id),
		review_id   UUID NOT NULL REFERENCES reviews (id),
		reason      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		CONSTRAINT pk_flags PRIMARY KEY (reporter_id, review_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id    UUID NOT NULL REFERENCES users (id),
		movie_id   UUID NOT NULL REFERENCES movies (id),
		created_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT pk_favorites PRIMARY KEY (user_id, movie_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_movie ON reviews (movie_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_flags_review ON flags (review_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_genres ON movies USING GIN (genres)`,
}

// RunMigrations применяет схему при старте. Все выражения идемпотентны,
// поэтому повторный запуск безопасен.
func RunMigrations(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.ErrorContext(ctx, "Migration statement failed", slog.String("error", err.Error()))
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	logger.InfoContext(ctx, "Database schema is up to date", slog.Int("statements", len(migrations)))
	return nil
}
