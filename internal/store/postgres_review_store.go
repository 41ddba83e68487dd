package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // Для обработки ошибок PostgreSQL

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// PostgresReviewStore реализует ReviewStore для PostgreSQL.
type PostgresReviewStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresReviewStore создает новый экземпляр PostgresReviewStore.
func NewPostgresReviewStore(db *sqlx.DB, logger *slog.Logger) (*PostgresReviewStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresReviewStore")
	}
	return &PostgresReviewStore{db: db, logger: logger}, nil
}

const reviewColumns = `id, user_id, movie_id, content, direction_score, screenplay_score,
	cinematography_score, general_score, likes_count, hidden, created_at, updated_at`

// Create сохраняет новый отзыв. Инварианты "сначала просмотр" и "один отзыв
// на пару" закрывают ограничения fk_review_watch и uq_user_movie_review:
// прикладная проверка перед вставкой оставляла бы окно для гонки.
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	query := `INSERT INTO reviews (id, user_id, movie_id, content, direction_score, screenplay_score,
                  cinematography_score, general_score, likes_count, hidden, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, FALSE, $9, $10)`

	review.CreatedAt = time.Now().UTC()
	review.UpdatedAt = review.CreatedAt
	review.LikesCount = 0
	review.Hidden = false

	_, err := s.db.ExecContext(ctx, query,
		review.ID, review.UserID, review.MovieID, review.Content,
		review.DirectionScore, review.ScreenplayScore, review.CinematographyScore, review.GeneralScore,
		review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch {
			case pqErr.Code == "23505" && pqErr.Constraint == "uq_user_movie_review":
				s.logger.WarnContext(ctx, "User has already reviewed this movie (DB constraint)",
					slog.String("userID", review.UserID), slog.String("movieID", review.MovieID))
				return ErrAlreadyReviewed
			case pqErr.Code == "23503" && pqErr.Constraint == "fk_review_watch":
				s.logger.WarnContext(ctx, "Review rejected: movie is not marked as watched",
					slog.String("userID", review.UserID), slog.String("movieID", review.MovieID))
				return ErrNotWatched
			}
		}
		s.logger.ErrorContext(ctx, "Failed to create review in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create review: %w", err)
	}
	s.logger.InfoContext(ctx, "Review created in DB", slog.String("reviewID", review.ID))
	return nil
}

// GetByID находит отзыв по ID, включая скрытые (нужно модерации и проверкам
// владельца; фильтрацию по видимости делает вызывающая сторона).
func (s *PostgresReviewStore) GetByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	var review domain.Review
	if err := s.db.GetContext(ctx, &review, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get review by ID from DB", slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get review by ID: %w", err)
	}
	return &review, nil
}

// Update заменяет текст и оценки, сохраняя created_at и счетчик лайков.
func (s *PostgresReviewStore) Update(ctx context.Context, review *domain.Review) error {
	query := `UPDATE reviews SET content = $1, direction_score = $2, screenplay_score = $3,
                  cinematography_score = $4, general_score = $5, updated_at = $6
              WHERE id = $7`

	review.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, query,
		review.Content, review.DirectionScore, review.ScreenplayScore,
		review.CinematographyScore, review.GeneralScore, review.UpdatedAt, review.ID,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update review in DB", slog.String("reviewID", review.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check review update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	s.logger.InfoContext(ctx, "Review updated in DB", slog.String("reviewID", review.ID))
	return nil
}

// DeleteCascade удаляет отзыв и его жалобы в одной транзакции.
func (s *PostgresReviewStore) DeleteCascade(ctx context.Context, reviewID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op после Commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM flags WHERE review_id = $1`, reviewID); err != nil {
		return fmt.Errorf("failed to delete flags of review: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check review delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Review deleted from DB", slog.String("reviewID", reviewID))
	return nil
}

// IncrementLikes атомарно увеличивает счетчик лайков и возвращает новое
// значение. Повторные лайки одного пользователя не дедуплицируются.
func (s *PostgresReviewStore) IncrementLikes(ctx context.Context, reviewID string) (int64, error) {
	query := `UPDATE reviews SET likes_count = likes_count + 1 WHERE id = $1 RETURNING likes_count`

	var likes int64
	if err := s.db.GetContext(ctx, &likes, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to increment review likes in DB", slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to increment likes: %w", err)
	}
	return likes, nil
}

// SetHidden выставляет видимость напрямую (операция администратора).
func (s *PostgresReviewStore) SetHidden(ctx context.Context, reviewID string, hidden bool) error {
	query := `UPDATE reviews SET hidden = $1, updated_at = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, hidden, time.Now().UTC(), reviewID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to set review visibility in DB", slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to set review visibility: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check visibility update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	s.logger.InfoContext(ctx, "Review visibility set in DB", slog.String("reviewID", reviewID), slog.Bool("hidden", hidden))
	return nil
}

// ListByMovie возвращает страницу видимых отзывов фильма и ID скрытых.
func (s *PostgresReviewStore) ListByMovie(ctx context.Context, movieID string, params ListParams) (*domain.ReviewPage, error) {
	return s.list(ctx, "movie_id", movieID, params)
}

// ListByUser возвращает страницу видимых отзывов пользователя и ID скрытых.
func (s *PostgresReviewStore) ListByUser(ctx context.Context, userID string, params ListParams) (*domain.ReviewPage, error) {
	return s.list(ctx, "user_id", userID, params)
}

// list общая выборка отзывов по колонке-фильтру. Скрытые отзывы выбираются
// отдельным запросом и только идентификаторами: их содержимое не должно
// покидать хранилище на путях листинга.
func (s *PostgresReviewStore) list(ctx context.Context, column, value string, params ListParams) (*domain.ReviewPage, error) {
	var totalCount int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM reviews WHERE %s = $1 AND NOT hidden`, column)
	if err := s.db.GetContext(ctx, &totalCount, countQuery, value); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count reviews in DB", slog.String(column, value), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	orderBy := "created_at DESC, id ASC"
	if params.SortBy == "likes_desc" {
		orderBy = "likes_count DESC, id ASC"
	}

	selectQuery := fmt.Sprintf(`SELECT `+reviewColumns+` FROM reviews
        WHERE %s = $1 AND NOT hidden ORDER BY %s LIMIT $2 OFFSET $3`, column, orderBy)

	reviews := []*domain.Review{}
	if totalCount > 0 {
		if err := s.db.SelectContext(ctx, &reviews, selectQuery, value, params.PageSize, params.Offset()); err != nil {
			s.logger.ErrorContext(ctx, "Failed to list reviews from DB", slog.String(column, value), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to list reviews: %w", err)
		}
	}

	hiddenQuery := fmt.Sprintf(`SELECT id FROM reviews WHERE %s = $1 AND hidden ORDER BY id ASC`, column)
	hiddenIDs := []string{}
	if err := s.db.SelectContext(ctx, &hiddenIDs, hiddenQuery, value); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list hidden review IDs from DB", slog.String(column, value), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list hidden review IDs: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	return &domain.ReviewPage{
		Reviews:    reviews,
		HiddenIDs:  hiddenIDs,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   params.PageSize,
	}, nil
}

// UserStats считает агрегаты одной выборкой. COALESCE дает 0 вместо NULL
// при нуле отзывов - деления на ноль не возникает.
func (s *PostgresReviewStore) UserStats(ctx context.Context, userID string) (*domain.UserStatistics, error) {
	query := `SELECT COUNT(*) AS review_count,
                     COALESCE(SUM(likes_count), 0) AS likes_total,
                     COALESCE(AVG(direction_score), 0) AS avg_direction,
                     COALESCE(AVG(screenplay_score), 0) AS avg_screenplay,
                     COALESCE(AVG(cinematography_score), 0) AS avg_cinematography,
                     COALESCE(AVG(general_score), 0) AS avg_general
              FROM reviews WHERE user_id = $1`

	row := s.db.QueryRowxContext(ctx, query, userID)
	stats := &domain.UserStatistics{UserID: userID}
	if err := row.Scan(
		&stats.ReviewCount, &stats.LikesTotal,
		&stats.Averages.Direction, &stats.Averages.Screenplay,
		&stats.Averages.Cinematography, &stats.Averages.General,
	); err != nil {
		s.logger.ErrorContext(ctx, "Failed to aggregate user review stats in DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to aggregate user stats: %w", err)
	}
	return stats, nil
}
