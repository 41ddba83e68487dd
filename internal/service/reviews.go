package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

// ReviewService управляет жизненным циклом отзывов: NotWatched -> Watched ->
// Reviewed, с подсостояниями Visible/Hidden у Reviewed (ими владеет
// ModerationService).
type ReviewService struct {
	reviews store.ReviewStore
	movies  store.MovieStore
	users   store.UserStore
	logger  *slog.Logger
}

// NewReviewService создает новый экземпляр ReviewService.
func NewReviewService(reviews store.ReviewStore, movies store.MovieStore, users store.UserStore, logger *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, movies: movies, users: users, logger: logger}
}

// Create создает отзыв для пары (пользователь, фильм).
// Требует записи о просмотре (store.ErrNotWatched) и отсутствия отзыва
// (store.ErrAlreadyReviewed); обе проверки атомарны на уровне хранилища.
func (s *ReviewService) Create(ctx context.Context, userID string, req *domain.CreateReviewRequest) (*domain.Review, error) {
	review := &domain.Review{
		ID:                  uuid.NewString(),
		UserID:              userID,
		MovieID:             req.MovieID,
		Content:             req.Content,
		DirectionScore:      req.DirectionScore,
		ScreenplayScore:     req.ScreenplayScore,
		CinematographyScore: req.CinematographyScore,
		GeneralScore:        req.GeneralScore,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Review created",
		slog.String("reviewID", review.ID), slog.String("userID", userID), slog.String("movieID", req.MovieID))
	return review, nil
}

// Update заменяет текст и оценки отзыва. Разрешено только владельцу
// (store.ErrForbidden); created_at сохраняется, updated_at освежается.
func (s *ReviewService) Update(ctx context.Context, reviewID, callerID string, req *domain.UpdateReviewRequest) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != callerID {
		s.logger.WarnContext(ctx, "Review update rejected: caller is not the owner",
			slog.String("reviewID", reviewID), slog.String("callerID", callerID))
		return nil, store.ErrForbidden
	}

	review.Content = req.Content
	review.DirectionScore = req.DirectionScore
	review.ScreenplayScore = req.ScreenplayScore
	review.CinematographyScore = req.CinematographyScore
	review.GeneralScore = req.GeneralScore

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Review updated", slog.String("reviewID", reviewID))
	return review, nil
}

// Delete удаляет отзыв вместе с его жалобами. Разрешено владельцу и
// администратору.
func (s *ReviewService) Delete(ctx context.Context, reviewID, callerID string, isAdmin bool) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != callerID {
		return store.ErrForbidden
	}
	if err := s.reviews.DeleteCascade(ctx, reviewID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Review deleted",
		slog.String("reviewID", reviewID), slog.String("callerID", callerID), slog.Bool("admin", isAdmin))
	return nil
}

// Like увеличивает счетчик лайков на 1 и возвращает новое значение.
// Дедупликации по пользователю нет: повторные лайки одного и того же
// пользователя все учитываются (поведение счетчика, не множества).
func (s *ReviewService) Like(ctx context.Context, reviewID string) (int64, error) {
	likes, err := s.reviews.IncrementLikes(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	s.logger.DebugContext(ctx, "Review liked", slog.String("reviewID", reviewID), slog.Int64("likes", likes))
	return likes, nil
}

// GetByID возвращает отзыв, включая скрытый; видимость для не-модераторов
// обеспечивает вызывающая сторона.
func (s *ReviewService) GetByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, reviewID)
}

// ForMovie возвращает отзывы фильма: видимые полностью, скрытые только
// идентификаторами.
func (s *ReviewService) ForMovie(ctx context.Context, movieID string, params store.ListParams) (*domain.ReviewPage, error) {
	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify movie: %w", err)
	}
	if !exists {
		return nil, store.ErrMovieNotFound
	}
	return s.reviews.ListByMovie(ctx, movieID, params)
}

// ForUser возвращает отзывы пользователя в том же разбиении.
func (s *ReviewService) ForUser(ctx context.Context, userID string, params store.ListParams) (*domain.ReviewPage, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return s.reviews.ListByUser(ctx, userID, params)
}
