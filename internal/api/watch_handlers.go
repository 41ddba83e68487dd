package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
)

// MarkWatched отмечает фильм просмотренным текущим пользователем.
func (h *HTTPHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	movieID := mux.Vars(r)["movieId"]
	h.logger.InfoContext(ctx, "HTTP MarkWatched request received", slog.String("userID", userID), slog.String("movieID", movieID))

	record, err := h.watches.MarkWatched(ctx, userID, movieID)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to mark movie as watched")
		return
	}
	h.respondJSON(w, r, http.StatusCreated, record)
}

// UnmarkWatched снимает отметку о просмотре. Привязанный отзыв и его жалобы
// удаляются каскадно.
func (h *HTTPHandler) UnmarkWatched(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	movieID := mux.Vars(r)["movieId"]
	h.logger.InfoContext(ctx, "HTTP UnmarkWatched request received", slog.String("userID", userID), slog.String("movieID", movieID))

	if err := h.watches.UnmarkWatched(ctx, userID, movieID); err != nil {
		h.respondStoreError(w, r, err, "Failed to unmark movie as watched")
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// AddFavorite добавляет фильм в избранное текущего пользователя.
func (h *HTTPHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	movieID := mux.Vars(r)["movieId"]
	h.logger.InfoContext(ctx, "HTTP AddFavorite request received", slog.String("userID", userID), slog.String("movieID", movieID))

	exists, err := h.movies.Exists(ctx, movieID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to verify movie for favorite", slog.String("movieID", movieID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to add favorite")
		return
	}
	if !exists {
		h.respondError(w, r, http.StatusNotFound, "Movie not found")
		return
	}

	favorite := &domain.Favorite{
		UserID:    userID,
		MovieID:   movieID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.favorites.Add(ctx, favorite); err != nil {
		h.respondStoreError(w, r, err, "Failed to add favorite")
		return
	}
	h.respondJSON(w, r, http.StatusCreated, favorite)
}

// RemoveFavorite убирает фильм из избранного текущего пользователя.
func (h *HTTPHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	movieID := mux.Vars(r)["movieId"]
	h.logger.InfoContext(ctx, "HTTP RemoveFavorite request received", slog.String("userID", userID), slog.String("movieID", movieID))

	if err := h.favorites.Remove(ctx, userID, movieID); err != nil {
		h.respondStoreError(w, r, err, "Failed to remove favorite")
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// ListFavorites возвращает избранные фильмы текущего пользователя
// в порядке добавления.
func (h *HTTPHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}

	movieIDs, err := h.favorites.ListMovieIDsByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list favorites from store", slog.String("userID", userID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve favorites")
		return
	}

	movies := make([]*domain.Movie, 0, len(movieIDs))
	for _, movieID := range movieIDs {
		movie, err := h.movies.GetByID(ctx, movieID)
		if err != nil {
			// Фильм мог быть удален из каталога; пропускаем, не роняя выдачу.
			if errors.Is(err, store.ErrMovieNotFound) {
				h.logger.WarnContext(ctx, "Favorite movie missing from catalog", slog.String("movieID", movieID))
				continue
			}
			h.logger.ErrorContext(ctx, "Failed to load favorite movie", slog.String("movieID", movieID), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve favorites")
			return
		}
		movies = append(movies, movie)
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"movies":      movies,
		"total_count": len(movies),
	})
}
