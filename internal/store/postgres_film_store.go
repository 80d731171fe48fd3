package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate-service/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresFilmStore реализует FilmStore для PostgreSQL.
type PostgresFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresFilmStore создает новый экземпляр PostgresFilmStore.
func NewPostgresFilmStore(db *sqlx.DB, logger *slog.Logger) (*PostgresFilmStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresFilmStore{db: db, logger: logger}, nil
}

// filmRow — строка таблицы films для сканирования через sqlx.
type filmRow struct {
	ID          int64       `db:"film_id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	ReleaseDate domain.Date `db:"release_date"`
	Duration    int         `db:"duration"`
	MpaID       int64       `db:"mpa_id"`
}

func (r filmRow) toDomain() *domain.Film {
	return &domain.Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ReleaseDate: r.ReleaseDate,
		Duration:    r.Duration,
		Mpa:         &domain.Mpa{ID: r.MpaID},
	}
}

// Create сохраняет фильм и его жанры одной транзакцией.
// ID выдает база (BIGSERIAL).
func (s *PostgresFilmStore) Create(ctx context.Context, film *domain.Film) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO films (name, description, release_date, duration, mpa_id)
              VALUES ($1, $2, $3, $4, $5) RETURNING film_id`

	s.logger.DebugContext(ctx, "Executing Create film query", slog.String("name", film.Name))
	err = tx.QueryRowxContext(ctx, query,
		film.Name, film.Description, film.ReleaseDate, film.Duration, film.MpaID(),
	).Scan(&film.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create film in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create film: %w", mapForeignKey(err))
	}

	if err := insertFilmGenres(ctx, tx, film.ID, film.GenreIDs()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save film genres", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit film create: %w", err)
	}
	s.logger.InfoContext(ctx, "Film created in DB", slog.Int64("filmID", film.ID))
	return nil
}

// Update обновляет поля фильма и целиком заменяет его набор жанров.
func (s *PostgresFilmStore) Update(ctx context.Context, film *domain.Film) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE films SET name = $1, description = $2, release_date = $3, duration = $4, mpa_id = $5
              WHERE film_id = $6`

	s.logger.DebugContext(ctx, "Executing Update film query", slog.Int64("filmID", film.ID))
	result, err := tx.ExecContext(ctx, query,
		film.Name, film.Description, film.ReleaseDate, film.Duration, film.MpaID(), film.ID,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update film in DB", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update film: %w", mapForeignKey(err))
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrFilmNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = $1`, film.ID); err != nil {
		return fmt.Errorf("failed to clear film genres: %w", err)
	}
	if err := insertFilmGenres(ctx, tx, film.ID, film.GenreIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit film update: %w", err)
	}
	s.logger.InfoContext(ctx, "Film updated in DB", slog.Int64("filmID", film.ID))
	return nil
}

func insertFilmGenres(ctx context.Context, tx *sqlx.Tx, filmID int64, genreIDs []int64) error {
	for _, genreID := range genreIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO film_genres (film_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			filmID, genreID)
		if err != nil {
			return fmt.Errorf("failed to insert film genre: %w", mapForeignKey(err))
		}
	}
	return nil
}

func (s *PostgresFilmStore) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	query := `SELECT film_id, name, description, release_date, duration, mpa_id
              FROM films WHERE film_id = $1`
	var row filmRow

	s.logger.DebugContext(ctx, "Executing GetFilmByID query", slog.Int64("filmID", id))
	err := s.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get film by ID from DB", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get film by ID: %w", err)
	}
	return row.toDomain(), nil
}

func (s *PostgresFilmStore) GetAll(ctx context.Context) ([]*domain.Film, error) {
	query := `SELECT film_id, name, description, release_date, duration, mpa_id
              FROM films ORDER BY film_id`
	var rows []filmRow

	s.logger.DebugContext(ctx, "Executing GetAll films query")
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films: %w", err)
	}

	films := make([]*domain.Film, len(rows))
	for i, row := range rows {
		films[i] = row.toDomain()
	}
	return films, nil
}

func (s *PostgresFilmStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM films WHERE film_id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check film existence: %w", err)
	}
	return exists, nil
}

// AddLike идемпотентен: повторный лайк той же пары (film, user) — no-op.
func (s *PostgresFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	query := `INSERT INTO likes (film_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	s.logger.DebugContext(ctx, "Executing AddLike query", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to add like in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to add like: %w", mapForeignKey(err))
	}
	return nil
}

// RemoveLike идемпотентен: удаление отсутствующего лайка — no-op.
func (s *PostgresFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	query := `DELETE FROM likes WHERE film_id = $1 AND user_id = $2`

	s.logger.DebugContext(ctx, "Executing RemoveLike query", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove like in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

func (s *PostgresFilmStore) LikesByFilm(ctx context.Context, filmID int64) ([]int64, error) {
	var userIDs []int64
	err := s.db.SelectContext(ctx, &userIDs, `SELECT user_id FROM likes WHERE film_id = $1 ORDER BY user_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("failed to load likes for film: %w", err)
	}
	return userIDs, nil
}

func (s *PostgresFilmStore) LikesByFilms(ctx context.Context, filmIDs []int64) (map[int64][]int64, error) {
	return s.bulkEdges(ctx, `SELECT film_id, user_id FROM likes WHERE film_id IN (?) ORDER BY film_id, user_id`, filmIDs)
}

func (s *PostgresFilmStore) GenresByFilm(ctx context.Context, filmID int64) ([]int64, error) {
	var genreIDs []int64
	err := s.db.SelectContext(ctx, &genreIDs,
		`SELECT genre_id FROM film_genres WHERE film_id = $1 ORDER BY genre_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("failed to load genres for film: %w", err)
	}
	return genreIDs, nil
}

func (s *PostgresFilmStore) GenresByFilms(ctx context.Context, filmIDs []int64) (map[int64][]int64, error) {
	return s.bulkEdges(ctx, `SELECT film_id, genre_id FROM film_genres WHERE film_id IN (?) ORDER BY film_id, genre_id`, filmIDs)
}

// bulkEdges выполняет один IN-запрос вместо запроса на каждый фильм.
// Фильмы без ребер в результирующей карте отсутствуют.
func (s *PostgresFilmStore) bulkEdges(ctx context.Context, query string, filmIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64)
	if len(filmIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(query, filmIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build bulk query: %w", err)
	}
	query = s.db.Rebind(query)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to run bulk edges query", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var filmID, relatedID int64
		if err := rows.Scan(&filmID, &relatedID); err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		result[filmID] = append(result[filmID], relatedID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading edge rows: %w", err)
	}
	return result, nil
}

// Popular возвращает limit фильмов по убыванию числа лайков.
// Фильмы без лайков участвуют и идут последними, tie-break по film_id.
func (s *PostgresFilmStore) Popular(ctx context.Context, limit int) ([]*domain.Film, error) {
	query := `SELECT f.film_id, f.name, f.description, f.release_date, f.duration, f.mpa_id
              FROM films f
              LEFT JOIN likes l ON f.film_id = l.film_id
              GROUP BY f.film_id
              ORDER BY COUNT(l.user_id) DESC, f.film_id
              LIMIT $1`
	var rows []filmRow

	s.logger.DebugContext(ctx, "Executing Popular films query", slog.Int("limit", limit))
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load popular films from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load popular films: %w", err)
	}

	films := make([]*domain.Film, len(rows))
	for i, row := range rows {
		films[i] = row.toDomain()
	}
	return films, nil
}

// mapForeignKey переводит нарушение внешнего ключа (23503) в ошибку "не найдено":
// вставка ребра со ссылкой на несуществующую строку означает, что сущность
// исчезла между проверкой существования и записью.
func mapForeignKey(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "likes_user_id_fkey", "friendships_friend_id_fkey", "friendships_user_id_fkey":
			return ErrUserNotFound
		case "film_genres_genre_id_fkey":
			return ErrGenreNotFound
		case "films_mpa_id_fkey":
			return ErrMpaNotFound
		default:
			return ErrFilmNotFound
		}
	}
	return err
}
