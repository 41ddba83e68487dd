// Пакет api содержит HTTP слой сервиса: обработчики, middleware и
// маршрутизатор. Обработчики переводят ошибки хранилища в статус-коды и
// не содержат доменной логики.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/service"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
	"github.com/Carolinyr9/my-movinhos-sub000/pkg/auth"
)

// PageLimits лимиты постраничной выдачи для разбора query-параметров.
type PageLimits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// HTTPHandler объединяет все HTTP обработчики сервиса.
// Учетные записи и каталог работают напрямую с хранилищем, остальные
// операции проходят через сервисный слой.
type HTTPHandler struct {
	users     store.UserStore
	movies    store.MovieStore
	favorites store.FavoriteStore

	watches    *service.WatchService
	reviews    *service.ReviewService
	moderation *service.ModerationService
	stats      *service.StatsService
	recommend  *service.RecommendService

	logger       *slog.Logger
	validator    *validator.Validate
	tokenManager auth.TokenManager
	limits       PageLimits
}

// NewHTTPHandler создает новый экземпляр HTTPHandler.
func NewHTTPHandler(
	users store.UserStore,
	movies store.MovieStore,
	favorites store.FavoriteStore,
	watches *service.WatchService,
	reviews *service.ReviewService,
	moderation *service.ModerationService,
	stats *service.StatsService,
	recommend *service.RecommendService,
	logger *slog.Logger,
	v *validator.Validate,
	tm auth.TokenManager,
	limits PageLimits,
) *HTTPHandler {
	return &HTTPHandler{
		users:        users,
		movies:       movies,
		favorites:    favorites,
		watches:      watches,
		reviews:      reviews,
		moderation:   moderation,
		stats:        stats,
		recommend:    recommend,
		logger:       logger,
		validator:    v,
		tokenManager: tm,
		limits:       limits,
	}
}

// --- Вспомогательные функции ---

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondStoreError отображает ошибки хранилища в статус-коды:
// *NotFound -> 404, дубликаты -> 409, нарушения состояния -> 422,
// ErrForbidden -> 403, ErrNoGenres -> 400, остальное -> 500.
func (h *HTTPHandler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrMovieNotFound),
		errors.Is(err, store.ErrWatchNotFound),
		errors.Is(err, store.ErrReviewNotFound),
		errors.Is(err, store.ErrFavoriteNotFound):
		h.respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUserAlreadyExists),
		errors.Is(err, store.ErrMovieAlreadyExists),
		errors.Is(err, store.ErrAlreadyWatched),
		errors.Is(err, store.ErrAlreadyFlagged),
		errors.Is(err, store.ErrAlreadyFavorite):
		h.respondError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotWatched),
		errors.Is(err, store.ErrAlreadyReviewed),
		errors.Is(err, store.ErrSelfFlag):
		h.respondError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrForbidden):
		h.respondError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNoGenres):
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled store error", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		h.respondError(w, r, http.StatusInternalServerError, fallback)
	}
}

// listParams разбирает page, limit и sort_by из query-параметров.
func (h *HTTPHandler) listParams(r *http.Request) store.ListParams {
	queryParams := r.URL.Query()

	page, _ := strconv.Atoi(queryParams.Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(queryParams.Get("limit"))
	if limit <= 0 {
		limit = h.limits.DefaultPageSize
	} else if limit > h.limits.MaxPageSize {
		limit = h.limits.MaxPageSize
	}

	return store.ListParams{
		Page:     page,
		PageSize: limit,
		SortBy:   queryParams.Get("sort_by"),
	}
}

// callerID извлекает ID пользователя, положенный в контекст AuthMiddleware.
// Пустая строка означает ошибку конфигурации маршрутов (ответ уже отправлен).
func (h *HTTPHandler) callerID(w http.ResponseWriter, r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok || userID == "" {
		h.logger.ErrorContext(r.Context(), "UserID not found in request context after AuthMiddleware", slog.String("path", r.URL.Path))
		h.respondError(w, r, http.StatusInternalServerError, "Error processing user identity")
		return ""
	}
	return userID
}

func (h *HTTPHandler) callerIsAdmin(r *http.Request) bool {
	role, _ := r.Context().Value(UserRoleKey).(string)
	return role == domain.RoleAdmin
}
