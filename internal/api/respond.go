package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"filmorate-service/internal/service"

	"github.com/gorilla/mux"
)

var errBadID = errors.New("bad id path parameter")

func respondJSON(logger *slog.Logger, w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.ErrorContext(r.Context(), "Failed to encode JSON response",
				slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func respondMessage(logger *slog.Logger, w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(logger, w, r, status, map[string]string{"error": message})
}

// respondServiceError переводит ошибку сервисного слоя в HTTP-статус:
// валидация — 400, не найдено — 404, конфликт — 409, остальное — 500
// с обезличенным сообщением.
func respondServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		respondJSON(logger, w, r, http.StatusBadRequest, map[string]interface{}{
			"error":   "Ошибка валидации",
			"details": validationErr.Violations,
		})
	case errors.As(err, &notFoundErr):
		respondMessage(logger, w, r, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		respondMessage(logger, w, r, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, errBadID):
		respondMessage(logger, w, r, http.StatusBadRequest, "Некорректный идентификатор в пути запроса")
	default:
		logger.ErrorContext(r.Context(), "Unexpected error handling request",
			slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		respondMessage(logger, w, r, http.StatusInternalServerError, "Произошла непредвиденная ошибка")
	}
}

// pathID извлекает числовой идентификатор из переменной пути.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errBadID
	}
	return id, nil
}
