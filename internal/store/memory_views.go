package store

import (
	"context"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// Типизированные представления MemoryStore под интерфейсы хранилища:
// все сущности живут в одном экземпляре под общим мьютексом, а интерфейсам
// отдаются тонкие обертки с нужными именами методов.

// Users возвращает представление UserStore.
func (m *MemoryStore) Users() UserStore { return memoryUsers{m} }

// Movies возвращает представление MovieStore.
func (m *MemoryStore) Movies() MovieStore { return memoryMovies{m} }

// Watches возвращает представление WatchStore.
func (m *MemoryStore) Watches() WatchStore { return memoryWatches{m} }

// Reviews возвращает представление ReviewStore.
func (m *MemoryStore) Reviews() ReviewStore { return memoryReviews{m} }

// Flags возвращает представление FlagStore.
func (m *MemoryStore) Flags() FlagStore { return memoryFlags{m} }

// Favorites возвращает представление FavoriteStore.
func (m *MemoryStore) Favorites() FavoriteStore { return memoryFavorites{m} }

type memoryUsers struct{ m *MemoryStore }

func (s memoryUsers) Create(ctx context.Context, user *domain.User) error {
	return s.m.CreateUser(ctx, user)
}
func (s memoryUsers) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.m.GetUserByID(ctx, userID)
}
func (s memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.m.GetUserByEmail(ctx, email)
}
func (s memoryUsers) Exists(ctx context.Context, userID string) (bool, error) {
	return s.m.UserExists(ctx, userID)
}

type memoryMovies struct{ m *MemoryStore }

func (s memoryMovies) Create(ctx context.Context, movie *domain.Movie) error {
	return s.m.CreateMovie(ctx, movie)
}
func (s memoryMovies) GetByID(ctx context.Context, movieID string) (*domain.Movie, error) {
	return s.m.GetMovieByID(ctx, movieID)
}
func (s memoryMovies) Exists(ctx context.Context, movieID string) (bool, error) {
	return s.m.MovieExists(ctx, movieID)
}
func (s memoryMovies) List(ctx context.Context, params ListParams) ([]*domain.Movie, int, error) {
	return s.m.ListMovies(ctx, params)
}
func (s memoryMovies) GenresByIDs(ctx context.Context, movieIDs []string) (map[string][]string, error) {
	return s.m.GenresByIDs(ctx, movieIDs)
}
func (s memoryMovies) ListByGenres(ctx context.Context, genres []string, params ListParams) ([]*domain.Movie, int, error) {
	return s.m.ListByGenres(ctx, genres, params)
}

type memoryWatches struct{ m *MemoryStore }

func (s memoryWatches) Create(ctx context.Context, record *domain.WatchRecord) error {
	return s.m.CreateWatch(ctx, record)
}
func (s memoryWatches) DeleteCascade(ctx context.Context, userID, movieID string) error {
	return s.m.DeleteWatchCascade(ctx, userID, movieID)
}
func (s memoryWatches) Exists(ctx context.Context, userID, movieID string) (bool, error) {
	return s.m.WatchExists(ctx, userID, movieID)
}
func (s memoryWatches) ListMovieIDsByUser(ctx context.Context, userID string) ([]string, error) {
	return s.m.WatchedMovieIDs(ctx, userID)
}

type memoryReviews struct{ m *MemoryStore }

func (s memoryReviews) Create(ctx context.Context, review *domain.Review) error {
	return s.m.CreateReview(ctx, review)
}
func (s memoryReviews) GetByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	return s.m.GetReviewByID(ctx, reviewID)
}
func (s memoryReviews) Update(ctx context.Context, review *domain.Review) error {
	return s.m.UpdateReview(ctx, review)
}
func (s memoryReviews) DeleteCascade(ctx context.Context, reviewID string) error {
	return s.m.DeleteReviewCascade(ctx, reviewID)
}
func (s memoryReviews) IncrementLikes(ctx context.Context, reviewID string) (int64, error) {
	return s.m.IncrementLikes(ctx, reviewID)
}
func (s memoryReviews) SetHidden(ctx context.Context, reviewID string, hidden bool) error {
	return s.m.SetHidden(ctx, reviewID, hidden)
}
func (s memoryReviews) ListByMovie(ctx context.Context, movieID string, params ListParams) (*domain.ReviewPage, error) {
	return s.m.ListReviewsByMovie(ctx, movieID, params)
}
func (s memoryReviews) ListByUser(ctx context.Context, userID string, params ListParams) (*domain.ReviewPage, error) {
	return s.m.ListReviewsByUser(ctx, userID, params)
}
func (s memoryReviews) UserStats(ctx context.Context, userID string) (*domain.UserStatistics, error) {
	return s.m.UserStats(ctx, userID)
}

type memoryFlags struct{ m *MemoryStore }

func (s memoryFlags) Create(ctx context.Context, flag *domain.Flag, autoHideThreshold int) (int, bool, error) {
	return s.m.CreateFlag(ctx, flag, autoHideThreshold)
}
func (s memoryFlags) ListHeavilyFlagged(ctx context.Context, minFlags int, params ListParams) ([]*domain.FlaggedReview, error) {
	return s.m.ListHeavilyFlagged(ctx, minFlags, params)
}

type memoryFavorites struct{ m *MemoryStore }

func (s memoryFavorites) Add(ctx context.Context, favorite *domain.Favorite) error {
	return s.m.AddFavorite(ctx, favorite)
}
func (s memoryFavorites) Remove(ctx context.Context, userID, movieID string) error {
	return s.m.RemoveFavorite(ctx, userID, movieID)
}
func (s memoryFavorites) ListMovieIDsByUser(ctx context.Context, userID string) ([]string, error) {
	return s.m.FavoriteMovieIDs(ctx, userID)
}
