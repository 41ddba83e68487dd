package store

import (
	"context"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// ListParams параметры постраничной выборки.
type ListParams struct {
	Page     int
	PageSize int
	SortBy   string // Например, "created_at_desc", "likes_desc"
}

// Offset возвращает смещение для SQL LIMIT/OFFSET.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// UserStore определяет интерфейс для операций с данными пользователей.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

// MovieStore определяет интерфейс для операций с каталогом фильмов.
type MovieStore interface {
	Create(ctx context.Context, movie *domain.Movie) error
	GetByID(ctx context.Context, movieID string) (*domain.Movie, error)
	Exists(ctx context.Context, movieID string) (bool, error)
	List(ctx context.Context, params ListParams) ([]*domain.Movie, int, error)

	// GenresByIDs возвращает жанры для каждого из переданных фильмов.
	// Порядок жанров внутри фильма сохраняется как в каталоге.
	GenresByIDs(ctx context.Context, movieIDs []string) (map[string][]string, error)

	// ListByGenres возвращает фильмы, чей набор жанров пересекается с genres
	// (непустое пересечение), без дубликатов, постранично.
	ListByGenres(ctx context.Context, genres []string, params ListParams) ([]*domain.Movie, int, error)
}

// WatchStore определяет интерфейс для записей о просмотрах.
type WatchStore interface {
	// Create возвращает ErrAlreadyWatched, если запись для пары уже есть.
	Create(ctx context.Context, record *domain.WatchRecord) error

	// DeleteCascade удаляет запись о просмотре вместе с привязанным отзывом
	// и его жалобами, одной атомарной операцией, в порядке:
	// жалобы -> отзыв -> запись о просмотре.
	// Возвращает ErrWatchNotFound, если записи нет.
	DeleteCascade(ctx context.Context, userID, movieID string) error

	Exists(ctx context.Context, userID, movieID string) (bool, error)

	// ListMovieIDsByUser возвращает ID просмотренных фильмов в порядке
	// возрастания watched_at. Порядок значим для движка рекомендаций.
	ListMovieIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// ReviewStore определяет интерфейс для операций с отзывами.
type ReviewStore interface {
	// Create возвращает ErrNotWatched, если для пары (user, movie) нет записи
	// о просмотре, и ErrAlreadyReviewed при повторном отзыве. Обе проверки
	// атомарны относительно конкурентных вызовов: их закрывают ограничения
	// хранилища, а не прикладная проверка.
	Create(ctx context.Context, review *domain.Review) error

	GetByID(ctx context.Context, reviewID string) (*domain.Review, error)

	// Update заменяет текст и оценки, освежает updated_at, сохраняет created_at.
	Update(ctx context.Context, review *domain.Review) error

	// DeleteCascade удаляет отзыв вместе с его жалобами одной атомарной
	// операцией. Возвращает ErrReviewNotFound, если отзыва нет.
	DeleteCascade(ctx context.Context, reviewID string) error

	// IncrementLikes увеличивает счетчик лайков на 1 и возвращает новое
	// значение. Дедупликации по пользователю нет: повторные лайки считаются.
	IncrementLikes(ctx context.Context, reviewID string) (int64, error)

	// SetHidden выставляет видимость напрямую, в обход порога авто-скрытия.
	// Единственный путь, возвращающий отзыв из скрытого состояния.
	SetHidden(ctx context.Context, reviewID string, hidden bool) error

	ListByMovie(ctx context.Context, movieID string, params ListParams) (*domain.ReviewPage, error)
	ListByUser(ctx context.Context, userID string, params ListParams) (*domain.ReviewPage, error)

	// UserStats возвращает количество отзывов, сумму лайков и средние по
	// четырем критериям. При нуле отзывов все значения равны 0.
	UserStats(ctx context.Context, userID string) (*domain.UserStatistics, error)
}

// FlagStore определяет интерфейс для жалоб на отзывы.
type FlagStore interface {
	// Create выполняет весь путь подачи жалобы одной атомарной операцией:
	// проверку существования отзыва (ErrReviewNotFound), запрет жалобы на
	// собственный отзыв (ErrSelfFlag), вставку с защитой от дубликата
	// (ErrAlreadyFlagged), пересчет числа жалоб и авто-скрытие при достижении
	// порога. Возвращает итоговое число жалоб и признак скрытия отзыва.
	Create(ctx context.Context, flag *domain.Flag, autoHideThreshold int) (flagCount int, hidden bool, err error)

	// ListHeavilyFlagged возвращает отзывы с числом жалоб >= minFlags,
	// упорядоченные по убыванию числа жалоб, при равенстве - по возрастанию
	// ID отзыва (детерминированный полный порядок для пагинации).
	ListHeavilyFlagged(ctx context.Context, minFlags int, params ListParams) ([]*domain.FlaggedReview, error)
}

// FavoriteStore определяет интерфейс для списка избранного.
type FavoriteStore interface {
	Add(ctx context.Context, favorite *domain.Favorite) error
	Remove(ctx context.Context, userID, movieID string) error

	// ListMovieIDsByUser возвращает ID избранных фильмов в порядке добавления.
	ListMovieIDsByUser(ctx context.Context, userID string) ([]string, error)
}
