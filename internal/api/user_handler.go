package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/service"
)

// UserHandler содержит зависимости HTTP-обработчиков пользователей.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// CreateUser обрабатывает POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode user payload", slog.String("error", err.Error()))
		respondMessage(h.logger, w, r, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	defer r.Body.Close()

	created, err := h.users.Create(ctx, &user)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusCreated, created)
}

// UpdateUser обрабатывает PUT /users (id передается в теле).
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode user payload", slog.String("error", err.Error()))
		respondMessage(h.logger, w, r, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	defer r.Body.Close()

	updated, err := h.users.Update(ctx, &user)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, updated)
}

// GetUsers обрабатывает GET /users.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAll(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, users)
}

// GetUserByID обрабатывает GET /users/{id}.
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, user)
}

// AddFriend обрабатывает PUT /users/{id}/friends/{friendId}.
func (h *UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	if err := h.users.AddFriend(r.Context(), userID, friendID); err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, nil)
}

// RemoveFriend обрабатывает DELETE /users/{id}/friends/{friendId}.
func (h *UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	if err := h.users.RemoveFriend(r.Context(), userID, friendID); err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, nil)
}

// GetFriends обрабатывает GET /users/{id}/friends.
func (h *UserHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	friends, err := h.users.Friends(r.Context(), userID)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, friends)
}

// GetCommonFriends обрабатывает GET /users/{id}/friends/common/{otherId}.
func (h *UserHandler) GetCommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	otherID, err := pathID(r, "otherId")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	common, err := h.users.CommonFriends(r.Context(), userID, otherID)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, common)
}
