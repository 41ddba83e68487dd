package domain

import (
	"time"

	"github.com/lib/pq" // pq.StringArray для колонки genres TEXT[]
)

// Movie представляет доменную модель фильма в каталоге.
// Жанры хранятся как массив имен (TEXT[] в PostgreSQL), отдельной таблицы
// жанров нет: движок рекомендаций оперирует именами жанров напрямую.
type Movie struct {
	ID          string         `json:"id" db:"id"` // UUID
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	ReleaseYear int            `json:"release_year" db:"release_year"`
	Director    string         `json:"director" db:"director"`
	Genres      pq.StringArray `json:"genres" db:"genres"`
	PosterURL   string         `json:"poster_url,omitempty" db:"poster_url"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateMovieRequest определяет тело запроса для добавления фильма в каталог.
type CreateMovieRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	ReleaseYear int      `json:"release_year" validate:"required,gte=1888,lte=2100"`
	Director    string   `json:"director,omitempty" validate:"omitempty,min=2,max=100"`
	Genres      []string `json:"genres" validate:"required,min=1,dive,min=2,max=50"`
	PosterURL   string   `json:"poster_url,omitempty" validate:"omitempty,url"`
}

// MoviePage результат постраничной выборки фильмов.
type MoviePage struct {
	Movies     []*Movie `json:"movies"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}
