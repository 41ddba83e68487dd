package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // Обработка ошибок PostgreSQL и работа с массивами TEXT[]

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// PostgresMovieStore реализует MovieStore для PostgreSQL.
type PostgresMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresMovieStore создает новый экземпляр PostgresMovieStore.
func NewPostgresMovieStore(db *sqlx.DB, logger *slog.Logger) (*PostgresMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresMovieStore")
	}
	return &PostgresMovieStore{db: db, logger: logger}, nil
}

// Create добавляет фильм в каталог.
func (s *PostgresMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	query := `INSERT INTO movies (id, title, description, release_year, director, genres, poster_url, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	movie.CreatedAt = time.Now().UTC()
	movie.UpdatedAt = movie.CreatedAt

	_, err := s.db.ExecContext(ctx, query,
		movie.ID, movie.Title, movie.Description, movie.ReleaseYear, movie.Director,
		pq.Array([]string(movie.Genres)), movie.PosterURL,
		movie.CreatedAt, movie.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrMovieAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create movie in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create movie: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie created in DB", slog.String("movieID", movie.ID), slog.String("title", movie.Title))
	return nil
}

// GetByID находит фильм по ID.
func (s *PostgresMovieStore) GetByID(ctx context.Context, movieID string) (*domain.Movie, error) {
	query := `SELECT id, title, description, release_year, director, genres, poster_url, created_at, updated_at
              FROM movies WHERE id = $1`

	var movie domain.Movie
	if err := s.db.GetContext(ctx, &movie, query, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from DB", slog.String("movieID", movieID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}
	return &movie, nil
}

// Exists проверяет наличие фильма в каталоге.
func (s *PostgresMovieStore) Exists(ctx context.Context, movieID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, movieID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to check movie existence in DB", slog.String("movieID", movieID), slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check movie existence: %w", err)
	}
	return exists, nil
}

// List возвращает страницу каталога.
func (s *PostgresMovieStore) List(ctx context.Context, params ListParams) ([]*domain.Movie, int, error) {
	var totalCount int
	if err := s.db.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM movies`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count movies in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Movie{}, 0, nil
	}

	query := `SELECT id, title, description, release_year, director, genres, poster_url, created_at, updated_at
              FROM movies ORDER BY created_at DESC, id ASC LIMIT $1 OFFSET $2`

	var movies []*domain.Movie
	if err := s.db.SelectContext(ctx, &movies, query, params.PageSize, params.Offset()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, totalCount, nil
}

// GenresByIDs возвращает жанры для каждого из переданных фильмов.
func (s *PostgresMovieStore) GenresByIDs(ctx context.Context, movieIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(movieIDs))
	if len(movieIDs) == 0 {
		return result, nil
	}

	query := `SELECT id, genres FROM movies WHERE id = ANY($1)`

	rows, err := s.db.QueryxContext(ctx, query, pq.Array(movieIDs))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load genres by movie IDs from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var genres pq.StringArray
		if err := rows.Scan(&id, &genres); err != nil {
			return nil, fmt.Errorf("failed to scan genres row: %w", err)
		}
		result[id] = []string(genres)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate genres rows: %w", err)
	}
	return result, nil
}

// ListByGenres возвращает фильмы с непустым пересечением жанров.
// Оператор && по GIN-индексу, дубликатов нет: строка каталога одна на фильм.
func (s *PostgresMovieStore) ListByGenres(ctx context.Context, genres []string, params ListParams) ([]*domain.Movie, int, error) {
	var totalCount int
	countQuery := `SELECT COUNT(*) FROM movies WHERE genres && $1`
	if err := s.db.GetContext(ctx, &totalCount, countQuery, pq.Array(genres)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count movies by genres in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count movies by genres: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Movie{}, 0, nil
	}

	query := `SELECT id, title, description, release_year, director, genres, poster_url, created_at, updated_at
              FROM movies WHERE genres && $1
              ORDER BY created_at DESC, id ASC LIMIT $2 OFFSET $3`

	var movies []*domain.Movie
	if err := s.db.SelectContext(ctx, &movies, query, pq.Array(genres), params.PageSize, params.Offset()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies by genres from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list movies by genres: %w", err)
	}
	return movies, totalCount, nil
}
