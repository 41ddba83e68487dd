package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// GetUserStatistics возвращает агрегированную статистику по отзывам
// пользователя: количество, сумму лайков и средние по четырем критериям.
func (h *HTTPHandler) GetUserStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetUserID := mux.Vars(r)["userId"]

	stats, err := h.stats.UserStatistics(ctx, targetUserID)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to retrieve user statistics")
		return
	}
	h.logger.InfoContext(ctx, "User statistics retrieved successfully",
		slog.String("targetUserID", targetUserID), slog.Int64("reviewCount", stats.ReviewCount))
	h.respondJSON(w, r, http.StatusOK, stats)
}

// GetUserAverages возвращает только средние оценки пользователя по четырем
// критериям (без счетчиков).
func (h *HTTPHandler) GetUserAverages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetUserID := mux.Vars(r)["userId"]

	averages, err := h.stats.AverageWeighted(ctx, targetUserID)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to retrieve user averages")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id":  targetUserID,
		"averages": averages,
	})
}

// GetUserTopGenres возвращает самые частые жанры в истории текущего
// пользователя: просмотренные плюс избранные фильмы.
func (h *HTTPHandler) GetUserTopGenres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 3
	}

	genres, err := h.recommend.TopGenres(ctx, userID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to compute top genres", slog.String("userID", userID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to compute top genres")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"genres":  genres,
	})
}

// GetRecommendations возвращает фильмы по топ-жанрам текущего пользователя.
// Пустая история дает пустую выдачу.
func (h *HTTPHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	params := h.listParams(r)

	genreLimit, _ := strconv.Atoi(r.URL.Query().Get("genres"))
	if genreLimit <= 0 {
		genreLimit = 3
	}

	movies, totalCount, err := h.recommend.ForUser(ctx, userID, genreLimit, params)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to compute recommendations")
		return
	}

	h.logger.InfoContext(ctx, "Recommendations computed successfully",
		slog.String("userID", userID), slog.Int("count", len(movies)))
	h.respondJSON(w, r, http.StatusOK, domain.MoviePage{
		Movies:     movies,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}
