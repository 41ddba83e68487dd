package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

// RecommendService строит персональные рекомендации по частоте жанров
// в истории просмотров и избранном пользователя.
type RecommendService struct {
	watches   store.WatchStore
	favorites store.FavoriteStore
	movies    store.MovieStore
	logger    *slog.Logger
}

// NewRecommendService создает новый экземпляр RecommendService.
func NewRecommendService(watches store.WatchStore, favorites store.FavoriteStore, movies store.MovieStore, logger *slog.Logger) *RecommendService {
	return &RecommendService{watches: watches, favorites: favorites, movies: movies, logger: logger}
}

// TopGenres возвращает limit самых частых жанров среди просмотренных и
// избранных фильмов пользователя. Частота считается по мультимножеству
// жанров всех фильмов; при равной частоте побеждает жанр, встреченный
// раньше (стабильная сортировка по порядку обхода) - порядок
// детерминирован и пригоден для тестов.
func (s *RecommendService) TopGenres(ctx context.Context, userID string, limit int) ([]domain.GenreCount, error) {
	watched, err := s.watches.ListMovieIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watched movies: %w", err)
	}
	favorite, err := s.favorites.ListMovieIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite movies: %w", err)
	}

	// Объединение: сначала просмотренные в порядке просмотра, затем
	// избранные в порядке добавления; каждый фильм учитывается один раз.
	seen := make(map[string]bool)
	var movieIDs []string
	for _, id := range append(append([]string(nil), watched...), favorite...) {
		if !seen[id] {
			seen[id] = true
			movieIDs = append(movieIDs, id)
		}
	}
	if len(movieIDs) == 0 {
		return []domain.GenreCount{}, nil
	}

	genresByMovie, err := s.movies.GenresByIDs(ctx, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}

	counts := make(map[string]int)
	var order []string // жанры в порядке первого появления
	for _, movieID := range movieIDs {
		for _, genre := range genresByMovie[movieID] {
			if counts[genre] == 0 {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}

	ranked := make([]domain.GenreCount, 0, len(order))
	for _, genre := range order {
		ranked = append(ranked, domain.GenreCount{Genre: genre, Count: counts[genre]})
	}
	// Стабильная сортировка сохраняет порядок первого появления при
	// равной частоте.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	s.logger.DebugContext(ctx, "Top genres computed",
		slog.String("userID", userID), slog.Int("movies", len(movieIDs)), slog.Int("genres", len(ranked)))
	return ranked, nil
}

// Recommend возвращает фильмы, чей набор жанров пересекается с переданным
// списком, без дубликатов, постранично. Пустой список жанров - ошибка
// store.ErrNoGenres.
func (s *RecommendService) Recommend(ctx context.Context, genres []string, params store.ListParams) ([]*domain.Movie, int, error) {
	if len(genres) == 0 {
		return nil, 0, store.ErrNoGenres
	}
	return s.movies.ListByGenres(ctx, genres, params)
}

// ForUser собирает рекомендации для пользователя: определяет его топ-жанры
// и возвращает фильмы по ним. При пустой истории возвращает пустую выдачу,
// а не ошибку: рекомендовать пока нечего.
func (s *RecommendService) ForUser(ctx context.Context, userID string, genreLimit int, params store.ListParams) ([]*domain.Movie, int, error) {
	top, err := s.TopGenres(ctx, userID, genreLimit)
	if err != nil {
		return nil, 0, err
	}
	if len(top) == 0 {
		return []*domain.Movie{}, 0, nil
	}
	genres := make([]string, 0, len(top))
	for _, gc := range top {
		genres = append(genres, gc.Genre)
	}
	return s.Recommend(ctx, genres, params)
}
