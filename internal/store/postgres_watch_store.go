package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// PostgresWatchStore реализует WatchStore для PostgreSQL.
type PostgresWatchStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresWatchStore создает новый экземпляр PostgresWatchStore.
func NewPostgresWatchStore(db *sqlx.DB, logger *slog.Logger) (*PostgresWatchStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresWatchStore")
	}
	return &PostgresWatchStore{db: db, logger: logger}, nil
}

// Create отмечает фильм просмотренным. Повторную отметку для той же пары
// отсекает первичный ключ (user_id, movie_id), а не прикладная проверка.
func (s *PostgresWatchStore) Create(ctx context.Context, record *domain.WatchRecord) error {
	query := `INSERT INTO watches (user_id, movie_id, watched_at) VALUES ($1, $2, $3)`

	if record.WatchedAt.IsZero() {
		record.WatchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query, record.UserID, record.MovieID, record.WatchedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation: pk_watches
				return ErrAlreadyWatched
			case "23503": // foreign_key_violation: нет пользователя или фильма
				return ErrMovieNotFound
			}
		}
		s.logger.ErrorContext(ctx, "Failed to create watch record in DB",
			slog.String("userID", record.UserID), slog.String("movieID", record.MovieID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to create watch record: %w", err)
	}
	s.logger.InfoContext(ctx, "Watch record created in DB",
		slog.String("userID", record.UserID), slog.String("movieID", record.MovieID))
	return nil
}

// DeleteCascade снимает отметку о просмотре и в той же транзакции удаляет
// привязанный отзыв вместе с его жалобами: жалобы -> отзыв -> запись.
// Конкурентное createReview для той же пары либо успевает до удаления записи
// о просмотре (и тогда отзыв попадает под каскад), либо падает на
// fk_review_watch - осиротевший отзыв невозможен.
func (s *PostgresWatchStore) DeleteCascade(ctx context.Context, userID, movieID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin unwatch transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op после Commit

	var reviewID string
	err = tx.GetContext(ctx, &reviewID,
		`SELECT id FROM reviews WHERE user_id = $1 AND movie_id = $2 FOR UPDATE`, userID, movieID)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM flags WHERE review_id = $1`, reviewID); err != nil {
			return fmt.Errorf("failed to delete flags of cascaded review: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID); err != nil {
			return fmt.Errorf("failed to delete cascaded review: %w", err)
		}
		s.logger.InfoContext(ctx, "Review cascaded on unwatch",
			slog.String("reviewID", reviewID), slog.String("userID", userID), slog.String("movieID", movieID))
	case errors.Is(err, sql.ErrNoRows):
		// Отзыва нет - удаляем только запись о просмотре.
	default:
		return fmt.Errorf("failed to look up review for cascade: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM watches WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return fmt.Errorf("failed to delete watch record: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check unwatch result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWatchNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unwatch transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Watch record deleted from DB",
		slog.String("userID", userID), slog.String("movieID", movieID))
	return nil
}

// Exists проверяет наличие записи о просмотре.
func (s *PostgresWatchStore) Exists(ctx context.Context, userID, movieID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM watches WHERE user_id = $1 AND movie_id = $2)`

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, userID, movieID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to check watch existence in DB", slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check watch existence: %w", err)
	}
	return exists, nil
}

// ListMovieIDsByUser возвращает просмотренные фильмы в порядке просмотра.
func (s *PostgresWatchStore) ListMovieIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT movie_id FROM watches WHERE user_id = $1 ORDER BY watched_at ASC, movie_id ASC`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list watched movies from DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list watched movies: %w", err)
	}
	return ids, nil
}
