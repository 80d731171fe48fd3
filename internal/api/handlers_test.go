package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/service"
	"filmorate-service/internal/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := service.NewValidator()
	require.NoError(t, err)

	filmStore := store.NewInMemoryFilmStore()
	userStore := store.NewInMemoryUserStore()
	refs := service.NewReferenceService(store.NewInMemoryReferenceStore(), logger)

	films := service.NewFilmService(filmStore, userStore, refs, v, logger)
	users := service.NewUserService(userStore, v, logger, service.UserServiceConfig{UniqueEmail: true})

	return NewRouter(
		NewFilmHandler(films, logger),
		NewUserHandler(users, logger),
		NewReferenceHandler(refs, logger),
		logger,
	)
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createMatrix(t *testing.T, router *mux.Router) domain.Film {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/films", map[string]interface{}{
		"name":        "Matrix",
		"releaseDate": "1999-03-31",
		"duration":    136,
		"mpa":         map[string]interface{}{"id": 3},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var film domain.Film
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &film))
	return film
}

func createTestUser(t *testing.T, router *mux.Router, login string) domain.User {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/users", map[string]interface{}{
		"email":    login + "@example.com",
		"login":    login,
		"birthday": "1990-05-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func TestCreateFilm(t *testing.T) {
	router := newTestRouter(t)

	film := createMatrix(t, router)

	assert.Equal(t, int64(1), film.ID)
	assert.Equal(t, "Matrix", film.Name)
	require.NotNil(t, film.Mpa)
	assert.Equal(t, "PG-13", film.Mpa.Name)
	assert.NotNil(t, film.Genres)
	assert.Empty(t, film.Genres)
}

func TestCreateFilm_ValidationErrorListsAllViolations(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/films", map[string]interface{}{
		"name":        "",
		"releaseDate": "1890-01-01",
		"duration":    -10,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Details, 4) // имя, дата релиза, продолжительность, mpa
}

func TestCreateFilm_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/films", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFilmByID_NotFoundAndBadID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/films/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/films/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLikeFlowAndPopular(t *testing.T) {
	router := newTestRouter(t)

	film := createMatrix(t, router)
	user := createTestUser(t, router, "neo")

	rec := doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/films/%d/like/%d", film.ID, user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/films/popular?count=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var popular []domain.Film
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &popular))
	require.Len(t, popular, 1)
	assert.Equal(t, film.ID, popular[0].ID)
	assert.Equal(t, []int64{user.ID}, popular[0].Likes)

	rec = doJSON(t, router, http.MethodDelete,
		fmt.Sprintf("/films/%d/like/%d", film.ID, user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/films/%d", film.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Film
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Likes)
}

func TestAddLike_MissingUser(t *testing.T) {
	router := newTestRouter(t)

	film := createMatrix(t, router)
	rec := doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/films/%d/like/999", film.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateUser_FutureBirthday(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/users", map[string]interface{}{
		"email":    "a@b.com",
		"login":    "ab",
		"birthday": "2099-01-01",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Contains(t, resp.Details[0], "Дата рождения")
}

func TestCreateUser_NameDefaultsToLogin(t *testing.T) {
	router := newTestRouter(t)

	user := createTestUser(t, router, "ab")
	assert.Equal(t, "ab", user.Name)
}

func TestCreateUser_DuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t)

	createTestUser(t, router, "dup")
	rec := doJSON(t, router, http.MethodPost, "/users", map[string]interface{}{
		"email":    "dup@example.com",
		"login":    "other",
		"birthday": "1990-05-15",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFriendEndpoints(t *testing.T) {
	router := newTestRouter(t)

	alice := createTestUser(t, router, "alice")
	bob := createTestUser(t, router, "bob")
	carol := createTestUser(t, router, "carol")

	// alice и bob дружат с carol
	rec := doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/users/%d/friends/%d", alice.ID, carol.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/users/%d/friends/%d", bob.ID, carol.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/users/%d/friends", alice.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var friends []domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, carol.ID, friends[0].ID)

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/users/%d/friends/common/%d", alice.ID, bob.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var common []domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &common))
	require.Len(t, common, 1)
	assert.Equal(t, carol.ID, common[0].ID)

	// Общие друзья с самим собой — ошибка валидации.
	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/users/%d/friends/common/%d", alice.ID, alice.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Добавление себя в друзья запрещено.
	rec = doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/users/%d/friends/%d", alice.ID, alice.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Несуществующий пользователь — 404.
	rec = doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/users/999/friends/%d", bob.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFilm_ByBodyID(t *testing.T) {
	router := newTestRouter(t)

	film := createMatrix(t, router)
	rec := doJSON(t, router, http.MethodPut, "/films", map[string]interface{}{
		"id":          film.ID,
		"name":        "Matrix Reloaded",
		"releaseDate": "2003-05-15",
		"duration":    138,
		"mpa":         map[string]interface{}{"id": 4},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.Film
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, film.ID, updated.ID)
	assert.Equal(t, "Matrix Reloaded", updated.Name)
	assert.Equal(t, "R", updated.Mpa.Name)

	// Обновление несуществующего фильма — 404.
	rec = doJSON(t, router, http.MethodPut, "/films", map[string]interface{}{
		"id":          777,
		"name":        "Ghost",
		"releaseDate": "2003-05-15",
		"duration":    100,
		"mpa":         map[string]interface{}{"id": 1},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferenceEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/genres", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var genres []domain.Genre
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &genres))
	assert.Len(t, genres, 6)

	rec = doJSON(t, router, http.MethodGet, "/mpa/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mpa domain.Mpa
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mpa))
	assert.Equal(t, "PG-13", mpa.Name)

	rec = doJSON(t, router, http.MethodGet, "/mpa/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/genres/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
