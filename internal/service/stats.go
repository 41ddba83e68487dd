package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

// StatsService считает агрегаты по отзывам пользователя. Только чтение.
type StatsService struct {
	reviews store.ReviewStore
	users   store.UserStore
	logger  *slog.Logger
}

// NewStatsService создает новый экземпляр StatsService.
func NewStatsService(reviews store.ReviewStore, users store.UserStore, logger *slog.Logger) *StatsService {
	return &StatsService{reviews: reviews, users: users, logger: logger}
}

// UserStatistics возвращает количество отзывов, сумму лайков и средние
// оценки пользователя. При нуле отзывов все значения равны 0, а не NaN.
func (s *StatsService) UserStatistics(ctx context.Context, userID string) (*domain.UserStatistics, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	if !exists {
		return nil, store.ErrUserNotFound
	}

	stats, err := s.reviews.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "User statistics computed",
		slog.String("userID", userID), slog.Int64("reviews", stats.ReviewCount))
	return stats, nil
}

// AverageWeighted возвращает отчет из четырех средних по критериям.
// Никакие веса не применяются: название отчета унаследовано и означает
// объединение четырех критериев, а не взвешенную формулу.
func (s *StatsService) AverageWeighted(ctx context.Context, userID string) (*domain.WeightedAverage, error) {
	stats, err := s.UserStatistics(ctx, userID)
	if err != nil {
		return nil, err
	}
	averages := stats.Averages
	return &averages, nil
}
