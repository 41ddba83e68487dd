package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
)

// ContextKey используется для ключей в контексте запроса.
type ContextKey string

const (
	// UserIDKey ключ для хранения ID пользователя в контексте.
	UserIDKey ContextKey = "userID"
	// UserRoleKey ключ для хранения роли пользователя в контексте.
	UserRoleKey ContextKey = "userRole"
)

// AuthMiddleware проверяет JWT токен из заголовка Authorization.
// Если токен валиден, ID пользователя и его роль добавляются в контекст запроса.
func (h *HTTPHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.logger.WarnContext(r.Context(), "Authorization header missing", slog.String("path", r.URL.Path))
			h.respondError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Ожидаем токен в формате "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			h.logger.WarnContext(r.Context(), "Invalid Authorization header format", slog.String("path", r.URL.Path))
			h.respondError(w, r, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}
		tokenString := parts[1]

		claims, err := h.tokenManager.Validate(tokenString)
		if err != nil {
			h.logger.WarnContext(r.Context(), "Invalid or expired token", slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserRoleKey, claims.Role)

		h.logger.DebugContext(ctx, "Token validated successfully", slog.String("userID", claims.UserID), slog.String("role", claims.Role))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пропускает запрос дальше только для роли администратора.
// Ставится после AuthMiddleware: роль берется из контекста.
func (h *HTTPHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleKey).(string)
		if !ok || role != domain.RoleAdmin {
			userID, _ := r.Context().Value(UserIDKey).(string)
			h.logger.WarnContext(r.Context(), "Admin-only endpoint access denied",
				slog.String("userID", userID), slog.String("role", role), slog.String("path", r.URL.Path))
			h.respondError(w, r, http.StatusForbidden, "Administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
