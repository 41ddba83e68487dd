package domain

import (
	"time"
)

// WatchRecord фиксирует, что пользователь посмотрел фильм.
// Составной идентификатор (user_id, movie_id): не более одной записи на пару.
// Отзыв не может существовать без записи о просмотре.
type WatchRecord struct {
	UserID    string    `json:"user_id" db:"user_id"`   // UUID пользователя
	MovieID   string    `json:"movie_id" db:"movie_id"` // UUID фильма
	WatchedAt time.Time `json:"watched_at" db:"watched_at"`
}

// Review представляет отзыв, привязанный 1:1 к записи о просмотре.
// Четыре оценки по критериям (0-5), счетчик лайков и флаг скрытия,
// управляемый движком модерации либо администратором.
type Review struct {
	ID                  string    `json:"id" db:"id"` // UUID
	UserID              string    `json:"user_id" db:"user_id"`
	MovieID             string    `json:"movie_id" db:"movie_id"`
	Content             string    `json:"content" db:"content"`
	DirectionScore      int       `json:"direction_score" db:"direction_score"`
	ScreenplayScore     int       `json:"screenplay_score" db:"screenplay_score"`
	CinematographyScore int       `json:"cinematography_score" db:"cinematography_score"`
	GeneralScore        int       `json:"general_score" db:"general_score"`
	LikesCount          int64     `json:"likes_count" db:"likes_count"`
	Hidden              bool      `json:"hidden" db:"hidden"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// CreateReviewRequest определяет тело запроса для создания отзыва.
// Оценка 0 допустима, поэтому на оценках нет тега required.
type CreateReviewRequest struct {
	MovieID             string `json:"movie_id" validate:"required,uuid"`
	Content             string `json:"content" validate:"required,min=1,max=2000"`
	DirectionScore      int    `json:"direction_score" validate:"gte=0,lte=5"`
	ScreenplayScore     int    `json:"screenplay_score" validate:"gte=0,lte=5"`
	CinematographyScore int    `json:"cinematography_score" validate:"gte=0,lte=5"`
	GeneralScore        int    `json:"general_score" validate:"gte=0,lte=5"`
}

// UpdateReviewRequest определяет тело запроса для обновления отзыва.
// Текст и оценки заменяются целиком, created_at сохраняется.
type UpdateReviewRequest struct {
	Content             string `json:"content" validate:"required,min=1,max=2000"`
	DirectionScore      int    `json:"direction_score" validate:"gte=0,lte=5"`
	ScreenplayScore     int    `json:"screenplay_score" validate:"gte=0,lte=5"`
	CinematographyScore int    `json:"cinematography_score" validate:"gte=0,lte=5"`
	GeneralScore        int    `json:"general_score" validate:"gte=0,lte=5"`
}

// Flag представляет жалобу пользователя на отзыв.
// Идентификатор составной (reporter_id, review_id): одна жалоба на отзыв
// от одного пользователя. После создания жалоба не изменяется.
type Flag struct {
	ReporterID string    `json:"reporter_id" db:"reporter_id"`
	ReviewID   string    `json:"review_id" db:"review_id"`
	Reason     string    `json:"reason" db:"reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FlagReviewRequest определяет тело запроса для подачи жалобы.
type FlagReviewRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// FlaggedReview отзыв вместе с количеством жалоб, для выборки модератора.
type FlaggedReview struct {
	Review    *Review `json:"review"`
	FlagCount int     `json:"flag_count" db:"flag_count"`
}

// Favorite представляет фильм в списке избранного пользователя.
type Favorite struct {
	UserID    string    `json:"user_id" db:"user_id"`
	MovieID   string    `json:"movie_id" db:"movie_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReviewPage результат выборки отзывов по фильму или пользователю.
// Скрытые отзывы отдаются только идентификаторами: вызывающая сторона видит
// факт скрытия, но не содержимое.
type ReviewPage struct {
	Reviews    []*Review `json:"reviews"`
	HiddenIDs  []string  `json:"hidden_ids"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// WeightedAverage содержит средние оценки пользователя по четырем критериям.
// Несмотря на название, никакие веса не применяются: это четыре независимых
// средних, объединенных в одну структуру (унаследованное имя отчета).
type WeightedAverage struct {
	Direction      float64 `json:"direction" db:"avg_direction"`
	Screenplay     float64 `json:"screenplay" db:"avg_screenplay"`
	Cinematography float64 `json:"cinematography" db:"avg_cinematography"`
	General        float64 `json:"general" db:"avg_general"`
}

// UserStatistics агрегированная статистика по отзывам пользователя.
// При нуле отзывов все средние равны 0, а не NaN.
type UserStatistics struct {
	UserID      string          `json:"user_id"`
	ReviewCount int64           `json:"review_count" db:"review_count"`
	LikesTotal  int64           `json:"likes_total" db:"likes_total"`
	Averages    WeightedAverage `json:"averages"`
}

// GenreCount частота жанра в истории пользователя.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}
