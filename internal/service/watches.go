// Пакет service содержит ядро платформы: жизненный цикл отзывов, модерацию
// жалоб, агрегацию статистики и движок рекомендаций. Сервисы принимают чистые
// идентификаторы и значения и возвращают доменные объекты либо ошибки из
// пакета store - типов HTTP-слоя здесь нет.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

// WatchService управляет записями о просмотрах.
type WatchService struct {
	watches store.WatchStore
	movies  store.MovieStore
	logger  *slog.Logger
}

// NewWatchService создает новый экземпляр WatchService.
func NewWatchService(watches store.WatchStore, movies store.MovieStore, logger *slog.Logger) *WatchService {
	return &WatchService{watches: watches, movies: movies, logger: logger}
}

// MarkWatched отмечает фильм просмотренным пользователем.
// Возвращает store.ErrMovieNotFound для неизвестного фильма и
// store.ErrAlreadyWatched при повторной отметке.
func (s *WatchService) MarkWatched(ctx context.Context, userID, movieID string) (*domain.WatchRecord, error) {
	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify movie: %w", err)
	}
	if !exists {
		return nil, store.ErrMovieNotFound
	}

	record := &domain.WatchRecord{
		UserID:    userID,
		MovieID:   movieID,
		WatchedAt: time.Now().UTC(),
	}
	if err := s.watches.Create(ctx, record); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Movie marked as watched",
		slog.String("userID", userID), slog.String("movieID", movieID))
	return record, nil
}

// UnmarkWatched снимает отметку о просмотре. Привязанный отзыв и его жалобы
// удаляются каскадно в той же атомарной операции хранилища.
func (s *WatchService) UnmarkWatched(ctx context.Context, userID, movieID string) error {
	if err := s.watches.DeleteCascade(ctx, userID, movieID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Movie unmarked as watched",
		slog.String("userID", userID), slog.String("movieID", movieID))
	return nil
}

// Exists сообщает, отмечен ли фильм просмотренным.
func (s *WatchService) Exists(ctx context.Context, userID, movieID string) (bool, error) {
	return s.watches.Exists(ctx, userID, movieID)
}
