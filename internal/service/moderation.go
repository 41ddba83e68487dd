package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

// ModerationService управляет жалобами сообщества и видимостью отзывов.
// Порог авто-скрытия - значение конфигурации, переданное при создании;
// он передается в хранилище на каждый вызов и не является доменным состоянием.
type ModerationService struct {
	flags             store.FlagStore
	reviews           store.ReviewStore
	users             store.UserStore
	autoHideThreshold int
	logger            *slog.Logger
}

// NewModerationService создает новый экземпляр ModerationService.
func NewModerationService(flags store.FlagStore, reviews store.ReviewStore, users store.UserStore, autoHideThreshold int, logger *slog.Logger) *ModerationService {
	return &ModerationService{
		flags:             flags,
		reviews:           reviews,
		users:             users,
		autoHideThreshold: autoHideThreshold,
		logger:            logger,
	}
}

// Flag подает жалобу на отзыв от имени reporterID.
// Ошибки: store.ErrUserNotFound / store.ErrReviewNotFound при отсутствии
// сторон, store.ErrAlreadyFlagged при повторной жалобе, store.ErrSelfFlag
// при жалобе на собственный отзыв. Вставка, пересчет и авто-скрытие
// выполняются хранилищем атомарно; жалоба на уже скрытый отзыв - не ошибка.
func (s *ModerationService) Flag(ctx context.Context, reviewID, reporterID, reason string) (*domain.Flag, int, error) {
	exists, err := s.users.Exists(ctx, reporterID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to verify reporter: %w", err)
	}
	if !exists {
		return nil, 0, store.ErrUserNotFound
	}

	flag := &domain.Flag{
		ReporterID: reporterID,
		ReviewID:   reviewID,
		Reason:     reason,
	}
	flagCount, hidden, err := s.flags.Create(ctx, flag, s.autoHideThreshold)
	if err != nil {
		return nil, 0, err
	}
	s.logger.InfoContext(ctx, "Review flagged",
		slog.String("reviewID", reviewID), slog.String("reporterID", reporterID),
		slog.Int("flagCount", flagCount), slog.Bool("hidden", hidden))
	return flag, flagCount, nil
}

// HeavilyFlagged возвращает отзывы с числом жалоб >= minFlags в
// детерминированном порядке (число жалоб по убыванию, ID по возрастанию).
func (s *ModerationService) HeavilyFlagged(ctx context.Context, minFlags int, params store.ListParams) ([]*domain.FlaggedReview, error) {
	if minFlags < 1 {
		minFlags = 1
	}
	return s.flags.ListHeavilyFlagged(ctx, minFlags, params)
}

// ToggleHide выставляет видимость отзыва напрямую, минуя пороговую логику.
// Права администратора проверяет вызывающая сторона. Это единственный путь,
// возвращающий скрытый отзыв в видимое состояние: авто-скрытие работает
// только в одну сторону.
func (s *ModerationService) ToggleHide(ctx context.Context, reviewID string, hide bool) error {
	if err := s.reviews.SetHidden(ctx, reviewID, hide); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Review visibility toggled by moderator",
		slog.String("reviewID", reviewID), slog.Bool("hidden", hide))
	return nil
}
