package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// MemoryStore хранит все сущности в памяти под одним мьютексом.
// Реализует все интерфейсы хранилища; используется в тестах и как режим
// запуска без БД. Мьютекс дает ту же атомарность составных операций
// (каскадное удаление, подача жалобы), что транзакции в PostgreSQL.
type MemoryStore struct {
	mu sync.RWMutex

	users       map[string]*domain.User
	emailIdx    map[string]string // email -> userID
	usernameIdx map[string]string // username -> userID

	movies     map[string]*domain.Movie
	movieOrder []string // ID фильмов в порядке добавления

	watches    map[string]*domain.WatchRecord // ключ: userID|movieID
	watchOrder []string                       // ключи в порядке создания

	reviews      map[string]*domain.Review
	reviewByPair map[string]string // userID|movieID -> reviewID

	flags map[string]*domain.Flag // ключ: reporterID|reviewID

	favorites     map[string]*domain.Favorite // ключ: userID|movieID
	favoriteOrder []string
}

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*domain.User),
		emailIdx:     make(map[string]string),
		usernameIdx:  make(map[string]string),
		movies:       make(map[string]*domain.Movie),
		watches:      make(map[string]*domain.WatchRecord),
		reviews:      make(map[string]*domain.Review),
		reviewByPair: make(map[string]string),
		flags:        make(map[string]*domain.Flag),
		favorites:    make(map[string]*domain.Favorite),
	}
}

func pairKey(userID, movieID string) string { return userID + "|" + movieID }
func flagKey(reporterID, reviewID string) string {
	return reporterID + "|" + reviewID
}

// paginate возвращает границы страницы для слайса длины total.
func paginate(total int, p ListParams) (start, end int) {
	if p.PageSize <= 0 {
		return 0, total
	}
	start = p.Offset()
	if start >= total {
		return total, total
	}
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// --- UserStore ---

func (m *MemoryStore) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emailIdx[strings.ToLower(user.Email)]; ok {
		return ErrUserAlreadyExists
	}
	if _, ok := m.usernameIdx[user.Username]; ok {
		return ErrUserAlreadyExists
	}
	userCopy := *user
	m.users[user.ID] = &userCopy
	m.emailIdx[strings.ToLower(user.Email)] = user.ID
	m.usernameIdx[user.Username] = user.ID
	return nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.emailIdx[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *m.users[userID]
	return &userCopy, nil
}

func (m *MemoryStore) UserExists(ctx context.Context, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[userID]
	return ok, nil
}

// --- MovieStore ---

func (m *MemoryStore) CreateMovie(ctx context.Context, movie *domain.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.movies[movie.ID]; ok {
		return ErrMovieAlreadyExists
	}
	movieCopy := *movie
	m.movies[movie.ID] = &movieCopy
	m.movieOrder = append(m.movieOrder, movie.ID)
	return nil
}

func (m *MemoryStore) GetMovieByID(ctx context.Context, movieID string) (*domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	movie, ok := m.movies[movieID]
	if !ok {
		return nil, ErrMovieNotFound
	}
	movieCopy := *movie
	return &movieCopy, nil
}

func (m *MemoryStore) MovieExists(ctx context.Context, movieID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.movies[movieID]
	return ok, nil
}

func (m *MemoryStore) ListMovies(ctx context.Context, params ListParams) ([]*domain.Movie, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*domain.Movie, 0, len(m.movieOrder))
	for _, id := range m.movieOrder {
		movieCopy := *m.movies[id]
		all = append(all, &movieCopy)
	}
	total := len(all)
	start, end := paginate(total, params)
	return all[start:end], total, nil
}

func (m *MemoryStore) GenresByIDs(ctx context.Context, movieIDs []string) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]string, len(movieIDs))
	for _, id := range movieIDs {
		if movie, ok := m.movies[id]; ok {
			result[id] = append([]string(nil), movie.Genres...)
		}
	}
	return result, nil
}

func (m *MemoryStore) ListByGenres(ctx context.Context, genres []string, params ListParams) ([]*domain.Movie, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]bool, len(genres))
	for _, g := range genres {
		wanted[strings.ToLower(g)] = true
	}

	var matched []*domain.Movie
	for _, id := range m.movieOrder {
		movie := m.movies[id]
		for _, g := range movie.Genres {
			if wanted[strings.ToLower(g)] {
				movieCopy := *movie
				matched = append(matched, &movieCopy)
				break // Фильм попадает в выдачу один раз
			}
		}
	}
	total := len(matched)
	start, end := paginate(total, params)
	return matched[start:end], total, nil
}

// --- WatchStore ---

func (m *MemoryStore) CreateWatch(ctx context.Context, record *domain.WatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(record.UserID, record.MovieID)
	if _, ok := m.watches[key]; ok {
		return ErrAlreadyWatched
	}
	recordCopy := *record
	m.watches[key] = &recordCopy
	m.watchOrder = append(m.watchOrder, key)
	return nil
}

func (m *MemoryStore) DeleteWatchCascade(ctx context.Context, userID, movieID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(userID, movieID)
	if _, ok := m.watches[key]; !ok {
		return ErrWatchNotFound
	}

	// Порядок каскада: жалобы -> отзыв -> запись о просмотре.
	if reviewID, ok := m.reviewByPair[key]; ok {
		m.deleteFlagsOfLocked(reviewID)
		delete(m.reviews, reviewID)
		delete(m.reviewByPair, key)
	}
	delete(m.watches, key)
	m.watchOrder = removeString(m.watchOrder, key)
	return nil
}

func (m *MemoryStore) WatchExists(ctx context.Context, userID, movieID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.watches[pairKey(userID, movieID)]
	return ok, nil
}

func (m *MemoryStore) WatchedMovieIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for _, key := range m.watchOrder {
		record := m.watches[key]
		if record.UserID == userID {
			ids = append(ids, record.MovieID)
		}
	}
	return ids, nil
}

// deleteFlagsOfLocked удаляет все жалобы на отзыв. Вызывается под мьютексом.
func (m *MemoryStore) deleteFlagsOfLocked(reviewID string) {
	for key, flag := range m.flags {
		if flag.ReviewID == reviewID {
			delete(m.flags, key)
		}
	}
}

func removeString(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// --- ReviewStore ---

func (m *MemoryStore) CreateReview(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(review.UserID, review.MovieID)
	if _, ok := m.watches[key]; !ok {
		return ErrNotWatched
	}
	if _, ok := m.reviewByPair[key]; ok {
		return ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now
	reviewCopy := *review
	m.reviews[review.ID] = &reviewCopy
	m.reviewByPair[key] = review.ID
	return nil
}

func (m *MemoryStore) GetReviewByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	review, ok := m.reviews[reviewID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	reviewCopy := *review
	return &reviewCopy, nil
}

func (m *MemoryStore) UpdateReview(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.reviews[review.ID]
	if !ok {
		return ErrReviewNotFound
	}
	current.Content = review.Content
	current.DirectionScore = review.DirectionScore
	current.ScreenplayScore = review.ScreenplayScore
	current.CinematographyScore = review.CinematographyScore
	current.GeneralScore = review.GeneralScore
	current.UpdatedAt = time.Now().UTC()

	review.CreatedAt = current.CreatedAt
	review.UpdatedAt = current.UpdatedAt
	review.LikesCount = current.LikesCount
	review.Hidden = current.Hidden
	return nil
}

func (m *MemoryStore) DeleteReviewCascade(ctx context.Context, reviewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	review, ok := m.reviews[reviewID]
	if !ok {
		return ErrReviewNotFound
	}
	m.deleteFlagsOfLocked(reviewID)
	delete(m.reviews, reviewID)
	delete(m.reviewByPair, pairKey(review.UserID, review.MovieID))
	return nil
}

func (m *MemoryStore) IncrementLikes(ctx context.Context, reviewID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	review, ok := m.reviews[reviewID]
	if !ok {
		return 0, ErrReviewNotFound
	}
	review.LikesCount++
	return review.LikesCount, nil
}

func (m *MemoryStore) SetHidden(ctx context.Context, reviewID string, hidden bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	review, ok := m.reviews[reviewID]
	if !ok {
		return ErrReviewNotFound
	}
	review.Hidden = hidden
	review.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) ListReviewsByMovie(ctx context.Context, movieID string, params ListParams) (*domain.ReviewPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listReviewsLocked(func(r *domain.Review) bool { return r.MovieID == movieID }, params), nil
}

func (m *MemoryStore) ListReviewsByUser(ctx context.Context, userID string, params ListParams) (*domain.ReviewPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listReviewsLocked(func(r *domain.Review) bool { return r.UserID == userID }, params), nil
}

// listReviewsLocked собирает страницу отзывов: видимые полностью, скрытые
// только идентификаторами. Вызывается под мьютексом.
func (m *MemoryStore) listReviewsLocked(match func(*domain.Review) bool, params ListParams) *domain.ReviewPage {
	var visible []*domain.Review
	var hiddenIDs []string
	for _, review := range m.reviews {
		if !match(review) {
			continue
		}
		if review.Hidden {
			hiddenIDs = append(hiddenIDs, review.ID)
			continue
		}
		reviewCopy := *review
		visible = append(visible, &reviewCopy)
	}

	switch params.SortBy {
	case "likes_desc":
		sort.Slice(visible, func(i, j int) bool {
			if visible[i].LikesCount != visible[j].LikesCount {
				return visible[i].LikesCount > visible[j].LikesCount
			}
			return visible[i].ID < visible[j].ID
		})
	default: // created_at_desc
		sort.Slice(visible, func(i, j int) bool {
			if !visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
				return visible[i].CreatedAt.After(visible[j].CreatedAt)
			}
			return visible[i].ID < visible[j].ID
		})
	}
	sort.Strings(hiddenIDs)

	total := len(visible)
	start, end := paginate(total, params)
	page := params.Page
	if page < 1 {
		page = 1
	}
	return &domain.ReviewPage{
		Reviews:    visible[start:end],
		HiddenIDs:  hiddenIDs,
		TotalCount: total,
		Page:       page,
		PageSize:   params.PageSize,
	}
}

func (m *MemoryStore) UserStats(ctx context.Context, userID string) (*domain.UserStatistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &domain.UserStatistics{UserID: userID}
	var sumDirection, sumScreenplay, sumCinematography, sumGeneral int64
	for _, review := range m.reviews {
		if review.UserID != userID {
			continue
		}
		stats.ReviewCount++
		stats.LikesTotal += review.LikesCount
		sumDirection += int64(review.DirectionScore)
		sumScreenplay += int64(review.ScreenplayScore)
		sumCinematography += int64(review.CinematographyScore)
		sumGeneral += int64(review.GeneralScore)
	}
	if stats.ReviewCount > 0 {
		n := float64(stats.ReviewCount)
		stats.Averages = domain.WeightedAverage{
			Direction:      float64(sumDirection) / n,
			Screenplay:     float64(sumScreenplay) / n,
			Cinematography: float64(sumCinematography) / n,
			General:        float64(sumGeneral) / n,
		}
	}
	return stats, nil
}

// --- FlagStore ---

func (m *MemoryStore) CreateFlag(ctx context.Context, flag *domain.Flag, autoHideThreshold int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	review, ok := m.reviews[flag.ReviewID]
	if !ok {
		return 0, false, ErrReviewNotFound
	}
	if review.UserID == flag.ReporterID {
		return 0, false, ErrSelfFlag
	}
	key := flagKey(flag.ReporterID, flag.ReviewID)
	if _, ok := m.flags[key]; ok {
		return 0, false, ErrAlreadyFlagged
	}

	flag.CreatedAt = time.Now().UTC()
	flagCopy := *flag
	m.flags[key] = &flagCopy

	count := 0
	for _, f := range m.flags {
		if f.ReviewID == flag.ReviewID {
			count++
		}
	}
	if autoHideThreshold > 0 && count >= autoHideThreshold && !review.Hidden {
		review.Hidden = true
		review.UpdatedAt = time.Now().UTC()
	}
	return count, review.Hidden, nil
}

func (m *MemoryStore) ListHeavilyFlagged(ctx context.Context, minFlags int, params ListParams) ([]*domain.FlaggedReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, flag := range m.flags {
		counts[flag.ReviewID]++
	}

	var flagged []*domain.FlaggedReview
	for reviewID, count := range counts {
		if count < minFlags {
			continue
		}
		reviewCopy := *m.reviews[reviewID]
		flagged = append(flagged, &domain.FlaggedReview{Review: &reviewCopy, FlagCount: count})
	}
	// Убывание по числу жалоб, при равенстве - возрастание ID отзыва.
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].FlagCount != flagged[j].FlagCount {
			return flagged[i].FlagCount > flagged[j].FlagCount
		}
		return flagged[i].Review.ID < flagged[j].Review.ID
	})

	start, end := paginate(len(flagged), params)
	return flagged[start:end], nil
}

// --- FavoriteStore ---

func (m *MemoryStore) AddFavorite(ctx context.Context, favorite *domain.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(favorite.UserID, favorite.MovieID)
	if _, ok := m.favorites[key]; ok {
		return ErrAlreadyFavorite
	}
	favoriteCopy := *favorite
	m.favorites[key] = &favoriteCopy
	m.favoriteOrder = append(m.favoriteOrder, key)
	return nil
}

func (m *MemoryStore) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(userID, movieID)
	if _, ok := m.favorites[key]; !ok {
		return ErrFavoriteNotFound
	}
	delete(m.favorites, key)
	m.favoriteOrder = removeString(m.favoriteOrder, key)
	return nil
}

func (m *MemoryStore) FavoriteMovieIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for _, key := range m.favoriteOrder {
		favorite := m.favorites[key]
		if favorite.UserID == userID {
			ids = append(ids, favorite.MovieID)
		}
	}
	return ids, nil
}
