package api

import (
	"log/slog"
	"net/http"

	"filmorate-service/internal/service"
)

// ReferenceHandler отдает справочники жанров и рейтингов MPA.
type ReferenceHandler struct {
	refs   *service.ReferenceService
	logger *slog.Logger
}

func NewReferenceHandler(refs *service.ReferenceService, logger *slog.Logger) *ReferenceHandler {
	return &ReferenceHandler{refs: refs, logger: logger}
}

// GetGenres обрабатывает GET /genres.
func (h *ReferenceHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.refs.Genres(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, genres)
}

// GetGenreByID обрабатывает GET /genres/{id}.
func (h *ReferenceHandler) GetGenreByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	genre, err := h.refs.GenreByID(r.Context(), id)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, genre)
}

// GetMpa обрабатывает GET /mpa.
func (h *ReferenceHandler) GetMpa(w http.ResponseWriter, r *http.Request) {
	mpa, err := h.refs.Mpa(r.Context())
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, mpa)
}

// GetMpaByID обрабатывает GET /mpa/{id}.
func (h *ReferenceHandler) GetMpaByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}

	mpa, err := h.refs.MpaByID(r.Context(), id)
	if err != nil {
		respondServiceError(h.logger, w, r, err)
		return
	}
	respondJSON(h.logger, w, r, http.StatusOK, mpa)
}
