package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL

	"github.com/Carolinyr9/my-movinhos-sub000/internal/api"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/config"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/service"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
	"github.com/Carolinyr9/my-movinhos-sub000/pkg/auth"
)

// stores объединяет все интерфейсы хранилища, чтобы переключаться между
// PostgreSQL и хранилищем в памяти одним местом.
type stores struct {
	users     store.UserStore
	movies    store.MovieStore
	watches   store.WatchStore
	reviews   store.ReviewStore
	flags     store.FlagStore
	favorites store.FavoriteStore
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectToDB инициализирует соединение с базой данных.
func connectToDB(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	// Логируем URL без пароля
	safeDbURL := dbURL
	atIndex := strings.Index(dbURL, "@")
	if atIndex > 0 {
		protocolAndUser := dbURL[:strings.LastIndex(dbURL[:atIndex], ":")]
		hostAndDB := dbURL[atIndex:]
		safeDbURL = protocolAndUser + ":********" + hostAndDB
	}
	logger.Info("Attempting to connect to PostgreSQL", slog.String("dbURL_used", safeDbURL))

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database.")
	return db, nil
}

// buildPostgresStores создает все хранилища поверх одного соединения
// и прогоняет миграции.
func buildPostgresStores(ctx context.Context, db *sqlx.DB, logger *slog.Logger) (*stores, error) {
	if err := store.RunMigrations(ctx, db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	users, err := store.NewPostgresUserStore(db, logger)
	if err != nil {
		return nil, err
	}
	movies, err := store.NewPostgresMovieStore(db, logger)
	if err != nil {
		return nil, err
	}
	watches, err := store.NewPostgresWatchStore(db, logger)
	if err != nil {
		return nil, err
	}
	reviews, err := store.NewPostgresReviewStore(db, logger)
	if err != nil {
		return nil, err
	}
	flags, err := store.NewPostgresFlagStore(db, logger)
	if err != nil {
		return nil, err
	}
	favorites, err := store.NewPostgresFavoriteStore(db, logger)
	if err != nil {
		return nil, err
	}

	return &stores{
		users:     users,
		movies:    movies,
		watches:   watches,
		reviews:   reviews,
		flags:     flags,
		favorites: favorites,
	}, nil
}

func buildMemoryStores() *stores {
	mem := store.NewMemoryStore()
	return &stores{
		users:     mem.Users(),
		movies:    mem.Movies(),
		watches:   mem.Watches(),
		reviews:   mem.Reviews(),
		flags:     mem.Flags(),
		favorites: mem.Favorites(),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}))
	validate := validator.New()

	tokenManager, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Error("Failed to initialize token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// --- Инициализация хранилища ---
	var st *stores
	if cfg.Database.InMemory {
		logger.Warn("Running with in-memory storage, data will not survive a restart")
		st = buildMemoryStores()
	} else {
		db, err := connectToDB(cfg.Database.URL, logger)
		if err != nil {
			logger.Error("Failed to initialize database connection", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			logger.Info("Closing PostgreSQL database connection...")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
			}
		}()

		st, err = buildPostgresStores(context.Background(), db, logger)
		if err != nil {
			logger.Error("Failed to initialize PostgreSQL stores", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("PostgreSQL stores initialized.")
	}

	// --- Сервисный слой ---
	watchService := service.NewWatchService(st.watches, st.movies, logger)
	reviewService := service.NewReviewService(st.reviews, st.movies, st.users, logger)
	moderationService := service.NewModerationService(st.flags, st.reviews, st.users, cfg.Moderation.AutoHideThreshold, logger)
	statsService := service.NewStatsService(st.reviews, st.users, logger)
	recommendService := service.NewRecommendService(st.watches, st.favorites, st.movies, logger)

	// --- HTTP слой ---
	handler := api.NewHTTPHandler(
		st.users, st.movies, st.favorites,
		watchService, reviewService, moderationService, statsService, recommendService,
		logger, validate, tokenManager,
		api.PageLimits{
			DefaultPageSize: cfg.API.DefaultPageSize,
			MaxPageSize:     cfg.API.MaxPageSize,
		},
	)
	router := api.NewHTTPRouter(handler)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting", slog.Int("port", cfg.Server.Port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP ListenAndServe() failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Service fully stopped.")
}
