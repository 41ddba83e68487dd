package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// CreateReview создает отзыв текущего пользователя. Отзыв возможен только
// на просмотренный фильм и только один на пару пользователь-фильм; обе
// проверки выполняет хранилище атомарно.
func (h *HTTPHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	h.logger.InfoContext(ctx, "HTTP CreateReview request received", slog.String("userID", userID))

	var req domain.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode create review request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.ErrorContext(ctx, "Create review request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	review, err := h.reviews.Create(ctx, userID, &req)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to create review")
		return
	}

	h.logger.InfoContext(ctx, "Review created successfully", slog.String("reviewID", review.ID), slog.String("movieID", review.MovieID))
	h.respondJSON(w, r, http.StatusCreated, review)
}

// GetReview возвращает отзыв по ID. Скрытый отзыв доступен только
// его автору и администратору.
func (h *HTTPHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID := mux.Vars(r)["reviewId"]

	review, err := h.reviews.GetByID(ctx, reviewID)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to retrieve review")
		return
	}

	if review.Hidden {
		callerID, _ := ctx.Value(UserIDKey).(string)
		if callerID != review.UserID && !h.callerIsAdmin(r) {
			h.respondError(w, r, http.StatusNotFound, "review not found")
			return
		}
	}
	h.respondJSON(w, r, http.StatusOK, review)
}

// UpdateReview заменяет текст и оценки отзыва. Доступно только автору.
func (h *HTTPHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	reviewID := mux.Vars(r)["reviewId"]
	h.logger.InfoContext(ctx, "HTTP UpdateReview request received", slog.String("userID", userID), slog.String("reviewID", reviewID))

	var req domain.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode update review request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.ErrorContext(ctx, "Update review request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	review, err := h.reviews.Update(ctx, reviewID, userID, &req)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to update review")
		return
	}
	h.respondJSON(w, r, http.StatusOK, review)
}

// DeleteReview удаляет отзыв вместе с его жалобами. Доступно автору
// и администратору.
func (h *HTTPHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	reviewID := mux.Vars(r)["reviewId"]
	h.logger.InfoContext(ctx, "HTTP DeleteReview request received", slog.String("userID", userID), slog.String("reviewID", reviewID))

	if err := h.reviews.Delete(ctx, reviewID, userID, h.callerIsAdmin(r)); err != nil {
		h.respondStoreError(w, r, err, "Failed to delete review")
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// LikeReview увеличивает счетчик лайков отзыва и возвращает новое значение.
func (h *HTTPHandler) LikeReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID := mux.Vars(r)["reviewId"]

	likes, err := h.reviews.Like(ctx, reviewID)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to like review")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"review_id":   reviewID,
		"likes_count": likes,
	})
}

// GetReviewsForMovie возвращает видимые отзывы фильма постранично и
// идентификаторы скрытых.
func (h *HTTPHandler) GetReviewsForMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID := mux.Vars(r)["movieId"]
	params := h.listParams(r)

	page, err := h.reviews.ForMovie(ctx, movieID, params)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to retrieve reviews")
		return
	}
	h.logger.InfoContext(ctx, "Reviews for movie retrieved successfully", slog.String("movieID", movieID), slog.Int("count", len(page.Reviews)))
	h.respondJSON(w, r, http.StatusOK, page)
}

// GetReviewsByUser возвращает видимые отзывы пользователя постранично и
// идентификаторы скрытых.
func (h *HTTPHandler) GetReviewsByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetUserID := mux.Vars(r)["userId"]
	params := h.listParams(r)

	page, err := h.reviews.ForUser(ctx, targetUserID, params)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to retrieve user's reviews")
		return
	}
	h.logger.InfoContext(ctx, "Reviews for user retrieved successfully", slog.String("targetUserID", targetUserID), slog.Int("count", len(page.Reviews)))
	h.respondJSON(w, r, http.StatusOK, page)
}
