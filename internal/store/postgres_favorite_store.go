package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// PostgresFavoriteStore реализует FavoriteStore для PostgreSQL.
type PostgresFavoriteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresFavoriteStore создает новый экземпляр PostgresFavoriteStore.
func NewPostgresFavoriteStore(db *sqlx.DB, logger *slog.Logger) (*PostgresFavoriteStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresFavoriteStore")
	}
	return &PostgresFavoriteStore{db: db, logger: logger}, nil
}

// Add добавляет фильм в избранное. Дубликат отсекает pk_favorites.
func (s *PostgresFavoriteStore) Add(ctx context.Context, favorite *domain.Favorite) error {
	query := `INSERT INTO favorites (user_id, movie_id, created_at) VALUES ($1, $2, $3)`

	favorite.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query, favorite.UserID, favorite.MovieID, favorite.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation: pk_favorites
				return ErrAlreadyFavorite
			case "23503": // foreign_key_violation: нет пользователя или фильма
				return ErrMovieNotFound
			}
		}
		s.logger.ErrorContext(ctx, "Failed to add favorite in DB",
			slog.String("userID", favorite.UserID), slog.String("movieID", favorite.MovieID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove убирает фильм из избранного.
func (s *PostgresFavoriteStore) Remove(ctx context.Context, userID, movieID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove favorite from DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check favorite removal result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListMovieIDsByUser возвращает избранные фильмы в порядке добавления.
func (s *PostgresFavoriteStore) ListMovieIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT movie_id FROM favorites WHERE user_id = $1 ORDER BY created_at ASC, movie_id ASC`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list favorites from DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}
