package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate-service/internal/domain"

	"github.com/jmoiron/sqlx"
)

// PostgresReferenceStore реализует ReferenceStore для PostgreSQL.
type PostgresReferenceStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresReferenceStore создает новый экземпляр PostgresReferenceStore.
func NewPostgresReferenceStore(db *sqlx.DB, logger *slog.Logger) (*PostgresReferenceStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresReferenceStore{db: db, logger: logger}, nil
}

func (s *PostgresReferenceStore) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	var genres []domain.Genre
	s.logger.DebugContext(ctx, "Executing GetAllGenres query")
	err := s.db.SelectContext(ctx, &genres, `SELECT genre_id, name FROM genres ORDER BY genre_id`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load genres from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	return genres, nil
}

func (s *PostgresReferenceStore) GetGenreByID(ctx context.Context, id int64) (*domain.Genre, error) {
	var genre domain.Genre
	err := s.db.GetContext(ctx, &genre, `SELECT genre_id, name FROM genres WHERE genre_id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to get genre by ID: %w", err)
	}
	return &genre, nil
}

func (s *PostgresReferenceStore) GetAllMpa(ctx context.Context) ([]domain.Mpa, error) {
	var mpa []domain.Mpa
	s.logger.DebugContext(ctx, "Executing GetAllMpa query")
	err := s.db.SelectContext(ctx, &mpa, `SELECT mpa_id, name FROM mpa_ratings ORDER BY mpa_id`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load mpa ratings from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load mpa ratings: %w", err)
	}
	return mpa, nil
}

func (s *PostgresReferenceStore) GetMpaByID(ctx context.Context, id int64) (*domain.Mpa, error) {
	var mpa domain.Mpa
	err := s.db.GetContext(ctx, &mpa, `SELECT mpa_id, name FROM mpa_ratings WHERE mpa_id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMpaNotFound
		}
		return nil, fmt.Errorf("failed to get mpa rating by ID: %w", err)
	}
	return &mpa, nil
}
