package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// FlagReview подает жалобу текущего пользователя на отзыв. Повторная жалоба
// того же пользователя и жалоба на собственный отзыв отклоняются. При
// достижении порога отзыв скрывается автоматически.
func (h *HTTPHandler) FlagReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reporterID := h.callerID(w, r)
	if reporterID == "" {
		return
	}
	reviewID := mux.Vars(r)["reviewId"]
	h.logger.InfoContext(ctx, "HTTP FlagReview request received", slog.String("reporterID", reporterID), slog.String("reviewID", reviewID))

	var req domain.FlagReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode flag review request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.ErrorContext(ctx, "Flag review request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	flag, flagCount, err := h.moderation.Flag(ctx, reviewID, reporterID, req.Reason)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to flag review")
		return
	}

	h.respondJSON(w, r, http.StatusCreated, map[string]interface{}{
		"flag":       flag,
		"flag_count": flagCount,
	})
}

// ListFlaggedReviews возвращает отзывы с числом жалоб не меньше min_flags,
// по убыванию числа жалоб. Только для администратора.
func (h *HTTPHandler) ListFlaggedReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := h.listParams(r)

	minFlags, _ := strconv.Atoi(r.URL.Query().Get("min_flags"))
	if minFlags < 1 {
		minFlags = 1
	}

	flagged, err := h.moderation.HeavilyFlagged(ctx, minFlags, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list flagged reviews", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve flagged reviews")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"reviews":   flagged,
		"min_flags": minFlags,
		"page":      params.Page,
		"page_size": params.PageSize,
	})
}

// visibilityRequest тело запроса администратора на смену видимости отзыва.
type visibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// SetReviewVisibility скрывает или возвращает отзыв, в обход порога
// авто-скрытия. Только для администратора; единственный путь, которым
// скрытый отзыв снова становится видимым.
func (h *HTTPHandler) SetReviewVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID := mux.Vars(r)["reviewId"]
	h.logger.InfoContext(ctx, "HTTP SetReviewVisibility request received", slog.String("reviewID", reviewID))

	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode visibility request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.moderation.ToggleHide(ctx, reviewID, req.Hidden); err != nil {
		h.respondStoreError(w, r, err, "Failed to change review visibility")
		return
	}

	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"review_id": reviewID,
		"hidden":    req.Hidden,
	})
}
