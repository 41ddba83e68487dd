package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Carolinyr9/my-movinhos-sub000/internal/domain"
	"github.com/Carolinyr9/my-movinhos-sub000/internal/store"
	"github.com/Carolinyr9/my-movinhos-sub000/pkg/auth"
)

// publicUser отдает пользователя без хеша пароля.
func publicUser(u *domain.User) *domain.User {
	return &domain.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RegisterUser регистрирует нового пользователя с ролью "user".
func (h *HTTPHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP RegisterUser request received", slog.String("path", r.URL.Path))

	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode registration request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.ErrorContext(ctx, "Registration request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to hash password", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Error processing registration")
		return
	}

	now := time.Now().UTC()
	newUser := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(ctx, newUser); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create user in store", slog.String("error", err.Error()))
		if errors.Is(err, store.ErrUserAlreadyExists) {
			h.respondError(w, r, http.StatusConflict, "User with this email or username already exists")
		} else {
			h.respondError(w, r, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	h.logger.InfoContext(ctx, "User registered successfully", slog.String("userID", newUser.ID), slog.String("username", newUser.Username))
	h.respondJSON(w, r, http.StatusCreated, publicUser(newUser))
}

// LoginUser проверяет учетные данные и выдает JWT токен.
func (h *HTTPHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP LoginUser request received", slog.String("path", r.URL.Path))

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "Failed to decode login request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.ErrorContext(ctx, "Login request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "Login attempt for non-existent email", slog.String("email", req.Email))
			h.respondError(w, r, http.StatusUnauthorized, "Invalid email or password")
		} else {
			h.logger.ErrorContext(ctx, "Failed to get user by email from store", slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "Invalid password attempt", slog.String("email", req.Email), slog.String("userID", user.ID))
		h.respondError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tokenString, err := h.tokenManager.Generate(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to generate JWT token", slog.String("userID", user.ID), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Login failed (token generation)")
		return
	}

	h.logger.InfoContext(ctx, "User logged in successfully", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, domain.LoginResponse{
		User:  publicUser(user),
		Token: tokenString,
	})
}

// GetUserProfile возвращает профиль текущего аутентифицированного пользователя.
func (h *HTTPHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := h.callerID(w, r)
	if userID == "" {
		return
	}
	h.logger.InfoContext(ctx, "HTTP GetUserProfile request received", slog.String("userID", userID))

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "User from valid token not found in store", slog.String("userID", userID))
			h.respondError(w, r, http.StatusNotFound, "User associated with token not found")
		} else {
			h.logger.ErrorContext(ctx, "Failed to get user by ID from store", slog.String("userID", userID), slog.String("error", err.Error()))
			h.respondError(w, r, http.StatusInternalServerError, "Failed to retrieve user profile")
		}
		return
	}
	h.respondJSON(w, r, http.StatusOK, publicUser(user))
}
