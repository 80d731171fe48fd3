package service

import (
	"context"
	"errors"
	"log/slog"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

// DefaultPopularLimit — количество популярных фильмов, когда count
// не указан или некорректен.
const DefaultPopularLimit = 10

// FilmService содержит бизнес-логику работы с фильмами: валидацию,
// разрешение справочных ссылок, лайки и обогащение ответов связями.
type FilmService struct {
	films     store.FilmStore
	users     store.UserStore
	refs      *ReferenceService
	validator *Validator
	logger    *slog.Logger
}

func NewFilmService(films store.FilmStore, users store.UserStore, refs *ReferenceService, v *Validator, logger *slog.Logger) *FilmService {
	return &FilmService{films: films, users: users, refs: refs, validator: v, logger: logger}
}

// GetAll возвращает все фильмы с жанрами, лайками и рейтингом MPA.
func (s *FilmService) GetAll(ctx context.Context) ([]*domain.Film, error) {
	s.logger.DebugContext(ctx, "Listing all films")
	films, err := s.films.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.enrichFilms(ctx, films); err != nil {
		return nil, err
	}
	return films, nil
}

// GetByID возвращает обогащенный фильм по id.
func (s *FilmService) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	film, err := s.films.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return nil, newNotFoundError("Фильм", id)
		}
		return nil, err
	}
	if err := s.enrichFilm(ctx, film); err != nil {
		return nil, err
	}
	return film, nil
}

// Create валидирует фильм, разрешает ссылки на MPA и жанры и сохраняет его.
// Неизвестный id жанра или рейтинга прерывает операцию ошибкой NotFound.
func (s *FilmService) Create(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	s.logger.InfoContext(ctx, "Creating film", slog.String("name", film.Name))

	if err := s.validator.ValidateFilm(film); err != nil {
		s.logger.WarnContext(ctx, "Film failed validation", slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.resolveReferences(ctx, film); err != nil {
		return nil, err
	}

	if err := s.films.Create(ctx, film); err != nil {
		return nil, s.mapStoreError(err)
	}
	s.logger.InfoContext(ctx, "Film created", slog.Int64("filmID", film.ID))
	return s.GetByID(ctx, film.ID)
}

// Update валидирует фильм и целиком заменяет его поля и набор жанров.
func (s *FilmService) Update(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	s.logger.InfoContext(ctx, "Updating film", slog.Int64("filmID", film.ID))

	if err := s.validator.ValidateFilm(film); err != nil {
		s.logger.WarnContext(ctx, "Film failed validation", slog.String("error", err.Error()))
		return nil, err
	}
	if film.ID == 0 {
		return nil, newValidationError("ID фильма должен быть указан")
	}

	exists, err := s.films.ExistsByID(ctx, film.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newNotFoundError("Фильм", film.ID)
	}

	if err := s.resolveReferences(ctx, film); err != nil {
		return nil, err
	}
	if err := s.films.Update(ctx, film); err != nil {
		return nil, s.mapStoreError(err)
	}
	s.logger.InfoContext(ctx, "Film updated", slog.Int64("filmID", film.ID))
	return s.GetByID(ctx, film.ID)
}

// AddLike ставит лайк фильму от пользователя. Оба id должны существовать.
// Повторный лайк — no-op.
func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	s.logger.InfoContext(ctx, "Adding like", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	if err := s.checkFilmAndUserExist(ctx, filmID, userID); err != nil {
		return err
	}
	return s.films.AddLike(ctx, filmID, userID)
}

// RemoveLike убирает лайк. Удаление отсутствующего лайка — no-op.
func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	s.logger.InfoContext(ctx, "Removing like", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	if err := s.checkFilmAndUserExist(ctx, filmID, userID); err != nil {
		return err
	}
	return s.films.RemoveLike(ctx, filmID, userID)
}

// Popular возвращает count фильмов по убыванию числа лайков.
// count <= 0 трактуется как значение по умолчанию.
func (s *FilmService) Popular(ctx context.Context, count int) ([]*domain.Film, error) {
	limit := count
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	s.logger.DebugContext(ctx, "Listing popular films", slog.Int("limit", limit))

	films, err := s.films.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := s.enrichFilms(ctx, films); err != nil {
		return nil, err
	}
	return films, nil
}

func (s *FilmService) checkFilmAndUserExist(ctx context.Context, filmID, userID int64) error {
	filmExists, err := s.films.ExistsByID(ctx, filmID)
	if err != nil {
		return err
	}
	if !filmExists {
		return newNotFoundError("Фильм", filmID)
	}
	userExists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !userExists {
		return newNotFoundError("Пользователь", userID)
	}
	return nil
}

// resolveReferences заменяет ссылки на MPA и жанры полными справочными
// записями. Дубликаты жанров схлопываются, порядок указания сохраняется.
func (s *FilmService) resolveReferences(ctx context.Context, film *domain.Film) error {
	mpa, err := s.refs.MpaByID(ctx, film.MpaID())
	if err != nil {
		return err
	}
	film.Mpa = mpa

	genreIDs := film.GenreIDs()
	genres := make([]domain.Genre, 0, len(genreIDs))
	for _, id := range genreIDs {
		genre, err := s.refs.GenreByID(ctx, id)
		if err != nil {
			return err
		}
		genres = append(genres, *genre)
	}
	film.Genres = genres
	return nil
}

// enrichFilm подтягивает жанры, лайки и рейтинг MPA одного фильма.
// Повторное обогащение безопасно: производные поля перезаписываются.
func (s *FilmService) enrichFilm(ctx context.Context, film *domain.Film) error {
	genreIDs, err := s.films.GenresByFilm(ctx, film.ID)
	if err != nil {
		return err
	}
	genresByID, err := s.refs.GenresByID(ctx)
	if err != nil {
		return err
	}
	film.Genres = resolveGenres(genreIDs, genresByID)

	likes, err := s.films.LikesByFilm(ctx, film.ID)
	if err != nil {
		return err
	}
	film.Likes = ensureIDs(likes)

	s.attachMpa(ctx, film)
	return nil
}

// enrichFilms — батчевая форма enrichFilm: по одному обращению к хранилищу
// на тип связи вместо обращения на каждый фильм.
func (s *FilmService) enrichFilms(ctx context.Context, films []*domain.Film) error {
	if len(films) == 0 {
		return nil
	}

	filmIDs := make([]int64, len(films))
	for i, film := range films {
		filmIDs[i] = film.ID
	}

	genreIDsByFilm, err := s.films.GenresByFilms(ctx, filmIDs)
	if err != nil {
		return err
	}
	likesByFilm, err := s.films.LikesByFilms(ctx, filmIDs)
	if err != nil {
		return err
	}
	genresByID, err := s.refs.GenresByID(ctx)
	if err != nil {
		return err
	}

	for _, film := range films {
		film.Genres = resolveGenres(genreIDsByFilm[film.ID], genresByID)
		film.Likes = ensureIDs(likesByFilm[film.ID])
		s.attachMpa(ctx, film)
	}
	return nil
}

// attachMpa заменяет голую ссылку на MPA полной справочной записью.
// Неразрешимая ссылка оставляется как есть: чтение деградирует мягко.
func (s *FilmService) attachMpa(ctx context.Context, film *domain.Film) {
	if film.Mpa == nil {
		return
	}
	mpa, err := s.refs.MpaByID(ctx, film.Mpa.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "Film references unknown mpa rating",
			slog.Int64("filmID", film.ID), slog.Int64("mpaID", film.Mpa.ID))
		return
	}
	film.Mpa = mpa
}

func (s *FilmService) mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrFilmNotFound):
		return &NotFoundError{Entity: "Фильм"}
	case errors.Is(err, store.ErrUserNotFound):
		return &NotFoundError{Entity: "Пользователь"}
	case errors.Is(err, store.ErrGenreNotFound):
		return &NotFoundError{Entity: "Жанр"}
	case errors.Is(err, store.ErrMpaNotFound):
		return &NotFoundError{Entity: "Рейтинг MPA"}
	default:
		return err
	}
}

// resolveGenres переводит id жанров в справочные записи, сохраняя порядок.
// Неизвестные id пропускаются: на пути чтения они не фатальны.
func resolveGenres(genreIDs []int64, genresByID map[int64]domain.Genre) []domain.Genre {
	genres := make([]domain.Genre, 0, len(genreIDs))
	for _, id := range genreIDs {
		if genre, ok := genresByID[id]; ok {
			genres = append(genres, genre)
		}
	}
	return genres
}

func ensureIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
