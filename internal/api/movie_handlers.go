package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// CreateMovie добавляет фильм в каталог. Доступно только администратору.
func (h *HTTPHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateMovie request received", slog.String("path", r.URL.Path))

	var req domain.CreateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode create movie request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.ErrorContext(ctx, "Create movie request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	now := time.Now().UTC()
	movie := &domain.Movie{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ReleaseYear: req.ReleaseYear,
		Director:    req.Director,
		Genres:      pq.StringArray(req.Genres),
		PosterURL:   req.PosterURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.movies.Create(ctx, movie); err != nil {
		h.respondStoreError(w, r, err, "Failed to create movie")
		return
	}

	h.logger.InfoContext(ctx, "Movie created successfully", slog.String("movieID", movie.ID), slog.String("title", movie.Title))
	h.respondJSON(w, r, http.StatusCreated, movie)
}

// GetMovie возвращает фильм по ID.
func (h *HTTPHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID := mux.Vars(r)["movieId"]

	movie, err := h.movies.GetByID(ctx, movieID)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to retrieve movie")
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// ListMovies возвращает каталог постранично. Параметр genres (имена через
// запятую) сужает выдачу до фильмов с пересекающимся набором жанров.
func (h *HTTPHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := h.listParams(r)

	var movies []*domain.Movie
	var totalCount int
	var err error
	if raw := r.URL.Query().Get("genres"); raw != "" {
		var genres []string
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
		movies, totalCount, err = h.movies.ListByGenres(ctx, genres, params)
	} else {
		movies, totalCount, err = h.movies.List(ctx, params)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list movies from store", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve movies")
		return
	}

	h.respondJSON(w, r, http.StatusOK, domain.MoviePage{
		Movies:     movies,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}
