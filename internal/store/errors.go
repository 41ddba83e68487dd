package store

import "errors"

// Кастомные ошибки хранилища. Обработчики HTTP отображают их в статус-коды:
// *NotFound -> 404, Already*/дубликаты -> 409, нарушения состояния -> 422,
// ErrForbidden -> 403, ErrNoGenres -> 400.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email or username already exists")

	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieAlreadyExists = errors.New("movie already exists")

	ErrWatchNotFound  = errors.New("watch record not found")
	ErrAlreadyWatched = errors.New("movie is already marked as watched")

	ErrReviewNotFound  = errors.New("review not found")
	ErrNotWatched      = errors.New("movie is not marked as watched")
	ErrAlreadyReviewed = errors.New("user has already reviewed this movie")

	ErrAlreadyFlagged = errors.New("user has already flagged this review")
	ErrSelfFlag       = errors.New("user cannot flag their own review")

	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrAlreadyFavorite  = errors.New("movie is already in favorites")

	// ErrForbidden возвращается сервисным слоем, когда вызывающий не владелец
	// и не администратор.
	ErrForbidden = errors.New("caller is not allowed to perform this operation")

	// ErrNoGenres возвращается движком рекомендаций при пустом списке жанров.
	ErrNoGenres = errors.New("genre list cannot be empty")
)
