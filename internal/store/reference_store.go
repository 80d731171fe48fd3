package store

import (
	"context"
	"sync"

	"filmorate-service/internal/domain"
)

// ReferenceStore определяет интерфейс доступа к справочным таблицам
// жанров и рейтингов MPA. Справочники только читаются.
type ReferenceStore interface {
	GetAllGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error)
	GetAllMpa(ctx context.Context) ([]domain.Mpa, error)
	GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error)
}

// DefaultGenres — стандартный набор жанров, совпадает с seed-данными schema.sql.
var DefaultGenres = []domain.Genre{
	{ID: 1, Name: "Комедия"},
	{ID: 2, Name: "Драма"},
	{ID: 3, Name: "Мультфильм"},
	{ID: 4, Name: "Триллер"},
	{ID: 5, Name: "Документальный"},
	{ID: 6, Name: "Боевик"},
}

// DefaultMpa — стандартный набор рейтингов MPA, совпадает с seed-данными schema.sql.
var DefaultMpa = []domain.Mpa{
	{ID: 1, Name: "G"},
	{ID: 2, Name: "PG"},
	{ID: 3, Name: "PG-13"},
	{ID: 4, Name: "R"},
	{ID: 5, Name: "NC-17"},
}

// InMemoryReferenceStore отдает предзаполненные справочники из памяти.
type InMemoryReferenceStore struct {
	mu     sync.RWMutex
	genres []domain.Genre
	mpa    []domain.Mpa
}

func NewInMemoryReferenceStore() *InMemoryReferenceStore {
	return &InMemoryReferenceStore{genres: DefaultGenres, mpa: DefaultMpa}
}

func (s *InMemoryReferenceStore) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	genres := make([]domain.Genre, len(s.genres))
	copy(genres, s.genres)
	return genres, nil
}

func (s *InMemoryReferenceStore) GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.genres {
		if g.ID == id {
			genre := g
			return &genre, nil
		}
	}
	return nil, ErrGenreNotFound
}

func (s *InMemoryReferenceStore) GetAllMpa(ctx context.Context) ([]domain.Mpa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mpa := make([]domain.Mpa, len(s.mpa))
	copy(mpa, s.mpa)
	return mpa, nil
}

func (s *InMemoryReferenceStore) GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mpa {
		if m.ID == id {
			mpa := m
			return &mpa, nil
		}
	}
	return nil, ErrMpaNotFound
}
