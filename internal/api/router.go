package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewHTTPRouter создает и настраивает HTTP маршрутизатор сервиса.
// Публичные маршруты: регистрация, вход, чтение каталога, отзывов и
// статистики. Все остальное требует JWT; админские маршруты вынесены
// в отдельный саб-роутер с проверкой роли.
func NewHTTPRouter(h *HTTPHandler) *mux.Router {
	router := mux.NewRouter()

	apiRouter := router.PathPrefix("/api").Subrouter()

	// Учетные записи
	usersRouter := apiRouter.PathPrefix("/users").Subrouter()
	usersRouter.HandleFunc("/register", h.RegisterUser).Methods(http.MethodPost)
	usersRouter.HandleFunc("/login", h.LoginUser).Methods(http.MethodPost)
	usersRouter.HandleFunc("/{userId}/reviews", h.GetReviewsByUser).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{userId}/statistics", h.GetUserStatistics).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{userId}/statistics/averages", h.GetUserAverages).Methods(http.MethodGet)

	meRouter := apiRouter.PathPrefix("/me").Subrouter()
	meRouter.Use(h.AuthMiddleware)
	meRouter.HandleFunc("", h.GetUserProfile).Methods(http.MethodGet)
	meRouter.HandleFunc("/favorites", h.ListFavorites).Methods(http.MethodGet)
	meRouter.HandleFunc("/genres", h.GetUserTopGenres).Methods(http.MethodGet)
	meRouter.HandleFunc("/recommendations", h.GetRecommendations).Methods(http.MethodGet)

	// Каталог: чтение публично, запись через админский саб-роутер ниже
	moviesRouter := apiRouter.PathPrefix("/movies").Subrouter()
	moviesRouter.HandleFunc("", h.ListMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/{movieId}", h.GetMovie).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/{movieId}/reviews", h.GetReviewsForMovie).Methods(http.MethodGet)

	// Просмотры и избранное: только для аутентифицированных
	movieActions := apiRouter.PathPrefix("/movies").Subrouter()
	movieActions.Use(h.AuthMiddleware)
	movieActions.HandleFunc("/{movieId}/watch", h.MarkWatched).Methods(http.MethodPost)
	movieActions.HandleFunc("/{movieId}/watch", h.UnmarkWatched).Methods(http.MethodDelete)
	movieActions.HandleFunc("/{movieId}/favorite", h.AddFavorite).Methods(http.MethodPost)
	movieActions.HandleFunc("/{movieId}/favorite", h.RemoveFavorite).Methods(http.MethodDelete)

	// Отзывы: чтение публично, запись только для аутентифицированных
	reviewsRouter := apiRouter.PathPrefix("/reviews").Subrouter()
	reviewsRouter.HandleFunc("/{reviewId}", h.GetReview).Methods(http.MethodGet)

	reviewActions := apiRouter.PathPrefix("/reviews").Subrouter()
	reviewActions.Use(h.AuthMiddleware)
	reviewActions.HandleFunc("", h.CreateReview).Methods(http.MethodPost)
	reviewActions.HandleFunc("/{reviewId}", h.UpdateReview).Methods(http.MethodPut)
	reviewActions.HandleFunc("/{reviewId}", h.DeleteReview).Methods(http.MethodDelete)
	reviewActions.HandleFunc("/{reviewId}/like", h.LikeReview).Methods(http.MethodPost)
	reviewActions.HandleFunc("/{reviewId}/flag", h.FlagReview).Methods(http.MethodPost)

	// Администрирование: каталог и модерация
	adminRouter := apiRouter.PathPrefix("/admin").Subrouter()
	adminRouter.Use(h.AuthMiddleware, h.RequireAdmin)
	adminRouter.HandleFunc("/movies", h.CreateMovie).Methods(http.MethodPost)
	adminRouter.HandleFunc("/reviews/flagged", h.ListFlaggedReviews).Methods(http.MethodGet)
	adminRouter.HandleFunc("/reviews/{reviewId}/visibility", h.SetReviewVisibility).Methods(http.MethodPut)

	return router
}
