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

// PostgresUserStore реализует UserStore для PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresUserStore создает новый экземпляр PostgresUserStore.
func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) (*PostgresUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresUserStore{db: db, logger: logger}, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (email, login, name, birthday)
              VALUES ($1, $2, $3, $4) RETURNING user_id`

	s.logger.DebugContext(ctx, "Executing Create user query", slog.String("login", user.Login))
	err := s.db.QueryRowxContext(ctx, query,
		user.Email, user.Login, user.Name, user.Birthday,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.WarnContext(ctx, "User email already taken", slog.String("email", user.Email))
			return ErrEmailTaken
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created in DB", slog.Int64("userID", user.ID))
	return nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET email = $1, login = $2, name = $3, birthday = $4
              WHERE user_id = $5`

	s.logger.DebugContext(ctx, "Executing Update user query", slog.Int64("userID", user.ID))
	result, err := s.db.ExecContext(ctx, query,
		user.Email, user.Login, user.Name, user.Birthday, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	s.logger.InfoContext(ctx, "User updated in DB", slog.Int64("userID", user.ID))
	return nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT user_id, email, login, name, birthday FROM users WHERE user_id = $1`
	var user domain.User

	s.logger.DebugContext(ctx, "Executing GetUserByID query", slog.Int64("userID", id))
	err := s.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT user_id, email, login, name, birthday FROM users ORDER BY user_id`
	var users []*domain.User

	s.logger.DebugContext(ctx, "Executing GetAll users query")
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *PostgresUserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresUserStore) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := s.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)`, email, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return taken, nil
}

// AddFriend добавляет направленное ребро дружбы. Повторное добавление — no-op.
func (s *PostgresUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	query := `INSERT INTO friendships (user_id, friend_id, status) VALUES ($1, $2, 'CONFIRMED')
              ON CONFLICT DO NOTHING`

	s.logger.DebugContext(ctx, "Executing AddFriend query", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	if _, err := s.db.ExecContext(ctx, query, userID, friendID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to add friendship in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to add friend: %w", mapForeignKey(err))
	}
	return nil
}

// RemoveFriend удаляет ребро дружбы. Удаление отсутствующего ребра — no-op.
func (s *PostgresUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	query := `DELETE FROM friendships WHERE user_id = $1 AND friend_id = $2`

	s.logger.DebugContext(ctx, "Executing RemoveFriend query", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	if _, err := s.db.ExecContext(ctx, query, userID, friendID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove friendship in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FriendsOf(ctx context.Context, userID int64) ([]int64, error) {
	var friendIDs []int64
	err := s.db.SelectContext(ctx, &friendIDs,
		`SELECT friend_id FROM friendships WHERE user_id = $1 ORDER BY friend_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	return friendIDs, nil
}

func (s *PostgresUserStore) FriendsByUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64)
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(
		`SELECT user_id, friend_id FROM friendships WHERE user_id IN (?) ORDER BY user_id, friend_id`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build bulk friends query: %w", err)
	}
	query = s.db.Rebind(query)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to run bulk friends query", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, friendID int64
		if err := rows.Scan(&userID, &friendID); err != nil {
			return nil, fmt.Errorf("failed to scan friendship row: %w", err)
		}
		result[userID] = append(result[userID], friendID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading friendship rows: %w", err)
	}
	return result, nil
}

// CommonFriendIDs считает пересечение множеств друзей двух пользователей
// одним запросом.
func (s *PostgresUserStore) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	query := `SELECT f1.friend_id FROM friendships f1
              JOIN friendships f2 ON f1.friend_id = f2.friend_id
              WHERE f1.user_id = $1 AND f2.user_id = $2
              ORDER BY f1.friend_id`
	var friendIDs []int64

	s.logger.DebugContext(ctx, "Executing CommonFriendIDs query", slog.Int64("userID", userID), slog.Int64("otherID", otherID))
	if err := s.db.SelectContext(ctx, &friendIDs, query, userID, otherID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load common friends from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load common friends: %w", err)
	}
	return friendIDs, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
