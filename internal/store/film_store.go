package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"filmorate-service/internal/domain"
)

// Кастомные ошибки хранилищ
var (
	ErrFilmNotFound  = errors.New("film not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrMpaNotFound   = errors.New("mpa rating not found")
	ErrEmailTaken    = errors.New("user with this email already exists")
)

// FilmStore определяет интерфейс хранилища фильмов вместе со связями
// фильм→жанр и фильм→лайк. Хранилище работает с "голой" записью фильма:
// проверка существования ссылок и обогащение — забота сервисного слоя.
type FilmStore interface {
	Create(ctx context.Context, film *domain.Film) error
	Update(ctx context.Context, film *domain.Film) error
	GetByID(ctx context.Context, id int64) (*domain.Film, error)
	GetAll(ctx context.Context) ([]*domain.Film, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)

	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
	LikesByFilm(ctx context.Context, filmID int64) ([]int64, error)
	LikesByFilms(ctx context.Context, filmIDs []int64) (map[int64][]int64, error)

	GenresByFilm(ctx context.Context, filmID int64) ([]int64, error)
	GenresByFilms(ctx context.Context, filmIDs []int64) (map[int64][]int64, error)

	Popular(ctx context.Context, limit int) ([]*domain.Film, error)
}

// InMemoryFilmStore хранит фильмы и их связи в памяти процесса.
// Используется в тестах и при запуске без базы данных.
type InMemoryFilmStore struct {
	mu     sync.RWMutex
	nextID int64
	films  map[int64]*domain.Film
	genres map[int64][]int64              // film_id -> genre_ids, порядок добавления
	likes  map[int64]map[int64]struct{}   // film_id -> set of user_ids
}

func NewInMemoryFilmStore() *InMemoryFilmStore {
	return &InMemoryFilmStore{
		films:  make(map[int64]*domain.Film),
		genres: make(map[int64][]int64),
		likes:  make(map[int64]map[int64]struct{}),
	}
}

func (s *InMemoryFilmStore) Create(ctx context.Context, film *domain.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	film.ID = s.nextID

	stored := *film
	stored.Genres = nil
	stored.Likes = nil
	s.films[film.ID] = &stored
	s.genres[film.ID] = film.GenreIDs()
	return nil
}

func (s *InMemoryFilmStore) Update(ctx context.Context, film *domain.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.films[film.ID]; !ok {
		return ErrFilmNotFound
	}
	stored := *film
	stored.Genres = nil
	stored.Likes = nil
	s.films[film.ID] = &stored
	s.genres[film.ID] = film.GenreIDs()
	return nil
}

func (s *InMemoryFilmStore) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	film, ok := s.films[id]
	if !ok {
		return nil, ErrFilmNotFound
	}
	filmCopy := *film
	return &filmCopy, nil
}

func (s *InMemoryFilmStore) GetAll(ctx context.Context) ([]*domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	films := make([]*domain.Film, 0, len(s.films))
	for _, film := range s.films {
		filmCopy := *film
		films = append(films, &filmCopy)
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

func (s *InMemoryFilmStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.films[id]
	return ok, nil
}

func (s *InMemoryFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.likes[filmID]
	if !ok {
		set = make(map[int64]struct{})
		s.likes[filmID] = set
	}
	set[userID] = struct{}{}
	return nil
}

func (s *InMemoryFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.likes[filmID]; ok {
		delete(set, userID)
	}
	return nil
}

func (s *InMemoryFilmStore) LikesByFilm(ctx context.Context, filmID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.likes[filmID]), nil
}

func (s *InMemoryFilmStore) LikesByFilms(ctx context.Context, filmIDs []int64) (map[int64][]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64][]int64)
	for _, id := range filmIDs {
		if set, ok := s.likes[id]; ok && len(set) > 0 {
			result[id] = sortedIDs(set)
		}
	}
	return result, nil
}

func (s *InMemoryFilmStore) GenresByFilm(ctx context.Context, filmID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.genres[filmID]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *InMemoryFilmStore) GenresByFilms(ctx context.Context, filmIDs []int64) (map[int64][]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64][]int64)
	for _, id := range filmIDs {
		if ids, ok := s.genres[id]; ok && len(ids) > 0 {
			out := make([]int64, len(ids))
			copy(out, ids)
			result[id] = out
		}
	}
	return result, nil
}

func (s *InMemoryFilmStore) Popular(ctx context.Context, limit int) ([]*domain.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	films := make([]*domain.Film, 0, len(s.films))
	for _, film := range s.films {
		filmCopy := *film
		films = append(films, &filmCopy)
	}
	sort.Slice(films, func(i, j int) bool {
		ci, cj := len(s.likes[films[i].ID]), len(s.likes[films[j].ID])
		if ci != cj {
			return ci > cj
		}
		return films[i].ID < films[j].ID
	})
	if limit < len(films) {
		films = films[:limit]
	}
	return films, nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
