package service

import (
	"context"
	"log/slog"
	"sync"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

// ReferenceService отдает справочники жанров и рейтингов MPA. Справочные
// таблицы малы и неизменяемы в течение жизни процесса, поэтому грузятся
// лениво один раз и дальше отдаются из кэша.
type ReferenceService struct {
	refs   store.ReferenceStore
	logger *slog.Logger

	mu         sync.RWMutex
	genres     []domain.Genre
	genresByID map[int64]domain.Genre
	mpa        []domain.Mpa
	mpaByID    map[int64]domain.Mpa
}

func NewReferenceService(refs store.ReferenceStore, logger *slog.Logger) *ReferenceService {
	return &ReferenceService{refs: refs, logger: logger}
}

// Genres возвращает все жанры в порядке их id.
func (s *ReferenceService) Genres(ctx context.Context) ([]domain.Genre, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	genres := make([]domain.Genre, len(s.genres))
	copy(genres, s.genres)
	return genres, nil
}

// GenreByID возвращает жанр по id. Неизвестный id — NotFoundError.
func (s *ReferenceService) GenreByID(ctx context.Context, id int64) (*domain.Genre, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	genre, ok := s.genresByID[id]
	if !ok {
		return nil, newNotFoundError("Жанр", id)
	}
	return &genre, nil
}

// GenresByID возвращает кэшированную карту id→жанр целиком.
func (s *ReferenceService) GenresByID(ctx context.Context) (map[int64]domain.Genre, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.genresByID, nil
}

// Mpa возвращает все рейтинги MPA в порядке их id.
func (s *ReferenceService) Mpa(ctx context.Context) ([]domain.Mpa, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	mpa := make([]domain.Mpa, len(s.mpa))
	copy(mpa, s.mpa)
	return mpa, nil
}

// MpaByID возвращает рейтинг MPA по id. Неизвестный id — NotFoundError.
func (s *ReferenceService) MpaByID(ctx context.Context, id int64) (*domain.Mpa, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	mpa, ok := s.mpaByID[id]
	if !ok {
		return nil, newNotFoundError("Рейтинг MPA", id)
	}
	return &mpa, nil
}

// ensureLoaded лениво загружает оба справочника под мьютексом.
// Кэш не инвалидируется: справочные данные считаются неизменяемыми.
func (s *ReferenceService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.genresByID != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genresByID != nil {
		return nil
	}

	genres, err := s.refs.GetAllGenres(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load genres reference data", slog.String("error", err.Error()))
		return err
	}
	mpa, err := s.refs.GetAllMpa(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load mpa reference data", slog.String("error", err.Error()))
		return err
	}

	s.genres = genres
	s.genresByID = make(map[int64]domain.Genre, len(genres))
	for _, g := range genres {
		s.genresByID[g.ID] = g
	}
	s.mpa = mpa
	s.mpaByID = make(map[int64]domain.Mpa, len(mpa))
	for _, m := range mpa {
		s.mpaByID[m.ID] = m
	}

	s.logger.InfoContext(ctx, "Reference data loaded",
		slog.Int("genres", len(genres)), slog.Int("mpa", len(mpa)))
	return nil
}
