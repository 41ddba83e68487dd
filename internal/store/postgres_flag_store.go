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

// PostgresFlagStore реализует FlagStore для PostgreSQL.
type PostgresFlagStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresFlagStore создает новый экземпляр PostgresFlagStore.
func NewPostgresFlagStore(db *sqlx.DB, logger *slog.Logger) (*PostgresFlagStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresFlagStore")
	}
	return &PostgresFlagStore{db: db, logger: logger}, nil
}

// Create выполняет весь путь подачи жалобы в одной транзакции.
// Строка отзыва берется под блокировку (SELECT ... FOR UPDATE): это
// сериализует конкурентных жалобщиков одного отзыва, иначе два параллельных
// вызова могут оба увидеть счетчик ниже порога и ни один не скроет отзыв,
// хотя суммарно порог пройден. Дубликат от того же пользователя дополнительно
// отсекает первичный ключ pk_flags - прикладной проверки нет вовсе.
func (s *PostgresFlagStore) Create(ctx context.Context, flag *domain.Flag, autoHideThreshold int) (int, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to begin flag transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op после Commit

	var owner struct {
		UserID string `db:"user_id"`
		Hidden bool   `db:"hidden"`
	}
	err = tx.GetContext(ctx, &owner,
		`SELECT user_id, hidden FROM reviews WHERE id = $1 FOR UPDATE`, flag.ReviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrReviewNotFound
		}
		return 0, false, fmt.Errorf("failed to lock review for flagging: %w", err)
	}
	if owner.UserID == flag.ReporterID {
		s.logger.WarnContext(ctx, "Self-flag rejected",
			slog.String("reviewID", flag.ReviewID), slog.String("reporterID", flag.ReporterID))
		return 0, false, ErrSelfFlag
	}

	flag.CreatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO flags (reporter_id, review_id, reason, created_at) VALUES ($1, $2, $3, $4)`,
		flag.ReporterID, flag.ReviewID, flag.Reason, flag.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation: pk_flags
			return 0, false, ErrAlreadyFlagged
		}
		return 0, false, fmt.Errorf("failed to insert flag: %w", err)
	}

	// Счетчик читается после вставки и под блокировкой строки отзыва,
	// поэтому включает собственную жалобу и все ранее зафиксированные.
	var flagCount int
	if err := tx.GetContext(ctx, &flagCount,
		`SELECT COUNT(*) FROM flags WHERE review_id = $1`, flag.ReviewID); err != nil {
		return 0, false, fmt.Errorf("failed to count flags: %w", err)
	}

	hidden := owner.Hidden
	if autoHideThreshold > 0 && flagCount >= autoHideThreshold && !hidden {
		if _, err := tx.ExecContext(ctx,
			`UPDATE reviews SET hidden = TRUE, updated_at = $1 WHERE id = $2`,
			time.Now().UTC(), flag.ReviewID); err != nil {
			return 0, false, fmt.Errorf("failed to auto-hide review: %w", err)
		}
		hidden = true
		s.logger.InfoContext(ctx, "Review auto-hidden by flag threshold",
			slog.String("reviewID", flag.ReviewID), slog.Int("flagCount", flagCount), slog.Int("threshold", autoHideThreshold))
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit flag transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Flag created in DB",
		slog.String("reviewID", flag.ReviewID), slog.String("reporterID", flag.ReporterID), slog.Int("flagCount", flagCount))
	return flagCount, hidden, nil
}

// ListHeavilyFlagged возвращает отзывы с числом жалоб >= minFlags.
// Порядок полный и детерминированный: по убыванию числа жалоб, при равенстве
// по возрастанию ID отзыва, поэтому повторный вызов без записей между ними
// дает тот же список.
func (s *PostgresFlagStore) ListHeavilyFlagged(ctx context.Context, minFlags int, params ListParams) ([]*domain.FlaggedReview, error) {
	query := `SELECT ` + reviewColumns + `, flag_count FROM (
                  SELECT r.*, COUNT(f.review_id) AS flag_count
                  FROM reviews r JOIN flags f ON f.review_id = r.id
                  GROUP BY r.id
                  HAVING COUNT(f.review_id) >= $1
              ) flagged
              ORDER BY flag_count DESC, id ASC
              LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryxContext(ctx, query, minFlags, params.PageSize, params.Offset())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list heavily flagged reviews from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list heavily flagged reviews: %w", err)
	}
	defer rows.Close()

	var flagged []*domain.FlaggedReview
	for rows.Next() {
		var review domain.Review
		var entry struct {
			domain.Review
			FlagCount int `db:"flag_count"`
		}
		if err := rows.StructScan(&entry); err != nil {
			return nil, fmt.Errorf("failed to scan flagged review row: %w", err)
		}
		review = entry.Review
		flagged = append(flagged, &domain.FlaggedReview{Review: &review, FlagCount: entry.FlagCount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flagged review rows: %w", err)
	}
	return flagged, nil
}
