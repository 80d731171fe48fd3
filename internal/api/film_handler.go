package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/service"
)

// FilmHandler содержит зависимости HTTP-обработчиков фильмов.
type FilmHandler struct {
	films  *service.FilmService
	logger *slog.Logger
}

func NewFilmHandler(films *service.FilmService, logger *slog.Logger) *FilmHandler {
	return &FilmHandler{films: films, logger: logger}
}

// CreateFilm обрабатывает POST /films.
func (h *FilmHandler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode film payload", slog.String("error", err.Error()))
		respondMessage(h.logger, w, r, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	defer r.Body.Close()

	created, err := h.films.Create(ctx, &film)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusCreated, created)
}

// UpdateFilm обрабатывает PUT /films (id передается в теле).
func (h *FilmHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode film payload", slog.String("error", err.Error()))
		respondMessage(h.logger, w, r, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	defer r.Body.Close()

	updated, err := h.films.Update(ctx, &film)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, updated)
}

// GetFilms обрабатывает GET /films.
func (h *FilmHandler) GetFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.GetAll(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, films)
}

// GetFilmByID обрабатывает GET /films/{id}.
func (h *FilmHandler) GetFilmByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	film, err := h.films.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, film)
}

// GetPopularFilms обрабатывает GET /films/popular?count=N.
func (h *FilmHandler) GetPopularFilms(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondMessage(h.logger, w, r, http.StatusBadRequest, "Параметр count должен быть числом")
			return
		}
		count = parsed
	}

	films, err := h.films.Popular(r.Context(), count)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, films)
}

// AddLike обрабатывает PUT /films/{id}/like/{userId}.
func (h *FilmHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	if err := h.films.AddLike(r.Context(), filmID, userID); err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, nil)
}

// RemoveLike обрабатывает DELETE /films/{id}/like/{userId}.
func (h *FilmHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	if err := h.films.RemoveLike(r.Context(), filmID, userID); err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, nil)
}
