package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter собирает маршруты сервиса поверх обработчиков фильмов,
// пользователей и справочников.
func NewRouter(films *FilmHandler, users *UserHandler, refs *ReferenceHandler, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogging(logger))

	// Эндпоинты фильмов
	router.HandleFunc("/films", films.CreateFilm).Methods(http.MethodPost)
	router.HandleFunc("/films", films.UpdateFilm).Methods(http.MethodPut)
	router.HandleFunc("/films", films.GetFilms).Methods(http.MethodGet)
	// /films/popular регистрируется раньше /films/{id}, иначе mux сматчит "popular" как id
	router.HandleFunc("/films/popular", films.GetPopularFilms).Methods(http.MethodGet)
	router.HandleFunc("/films/{id}", films.GetFilmByID).Methods(http.MethodGet)
	router.HandleFunc("/films/{id}/like/{userId}", films.AddLike).Methods(http.MethodPut)
	router.HandleFunc("/films/{id}/like/{userId}", films.RemoveLike).Methods(http.MethodDelete)

	// Эндпоинты пользователей и дружб
	router.HandleFunc("/users", users.CreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users", users.UpdateUser).Methods(http.MethodPut)
	router.HandleFunc("/users", users.GetUsers).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}", users.GetUserByID).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/friends", users.GetFriends).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/friends/common/{otherId}", users.GetCommonFriends).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/friends/{friendId}", users.AddFriend).Methods(http.MethodPut)
	router.HandleFunc("/users/{id}/friends/{friendId}", users.RemoveFriend).Methods(http.MethodDelete)

	// Справочники
	router.HandleFunc("/genres", refs.GetGenres).Methods(http.MethodGet)
	router.HandleFunc("/genres/{id}", refs.GetGenreByID).Methods(http.MethodGet)
	router.HandleFunc("/mpa", refs.GetMpa).Methods(http.MethodGet)
	router.HandleFunc("/mpa/{id}", refs.GetMpaByID).Methods(http.MethodGet)

	return router
}
