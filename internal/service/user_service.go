package service

import (
	"context"
	"errors"
	"log/slog"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"
)

// UserServiceConfig задает политики, по-разному решенные в разных вариантах
// исходной системы.
type UserServiceConfig struct {
	// SymmetricFriendship: при true добавление друга пишет оба ребра
	// (и удаление убирает оба). По умолчанию дружба направленная.
	SymmetricFriendship bool
	// UniqueEmail: при true занятый email на создании и обновлении
	// дает ошибку Conflict.
	UniqueEmail bool
}

// UserService содержит бизнес-логику работы с пользователями и дружбами.
type UserService struct {
	users     store.UserStore
	validator *Validator
	logger    *slog.Logger
	cfg       UserServiceConfig
}

func NewUserService(users store.UserStore, v *Validator, logger *slog.Logger, cfg UserServiceConfig) *UserService {
	return &UserService{users: users, validator: v, logger: logger, cfg: cfg}
}

// GetAll возвращает всех пользователей с их списками друзей.
func (s *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	s.logger.DebugContext(ctx, "Listing all users")
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.enrichUsers(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID возвращает пользователя с его списком друзей.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, newNotFoundError("Пользователь", id)
		}
		return nil, err
	}
	if err := s.enrichUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Create валидирует и сохраняет пользователя. Пустое имя заменяется логином
// после успешной валидации.
func (s *UserService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.logger.InfoContext(ctx, "Creating user", slog.String("login", user.Login))

	if err := s.validator.ValidateUser(user); err != nil {
		s.logger.WarnContext(ctx, "User failed validation", slog.String("error", err.Error()))
		return nil, err
	}
	defaultName(user)

	if err := s.checkEmailFree(ctx, user.Email, 0); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapUserStoreError(err)
	}
	s.logger.InfoContext(ctx, "User created", slog.Int64("userID", user.ID))
	user.Friends = []int64{}
	return user, nil
}

// Update валидирует и целиком заменяет поля пользователя.
func (s *UserService) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.logger.InfoContext(ctx, "Updating user", slog.Int64("userID", user.ID))

	if err := s.validator.ValidateUser(user); err != nil {
		s.logger.WarnContext(ctx, "User failed validation", slog.String("error", err.Error()))
		return nil, err
	}
	if user.ID == 0 {
		return nil, newValidationError("ID пользователя должен быть указан")
	}

	exists, err := s.users.ExistsByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newNotFoundError("Пользователь", user.ID)
	}

	defaultName(user)
	if err := s.checkEmailFree(ctx, user.Email, user.ID); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserStoreError(err)
	}
	s.logger.InfoContext(ctx, "User updated", slog.Int64("userID", user.ID))
	return s.GetByID(ctx, user.ID)
}

// AddFriend добавляет friendID в друзья userID. Оба пользователя должны
// существовать, добавить в друзья самого себя нельзя. Повторное добавление —
// no-op. В симметричном режиме ребро пишется в обе стороны.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) error {
	s.logger.InfoContext(ctx, "Adding friend", slog.Int64("userID", userID), slog.Int64("friendID", friendID))

	if err := s.checkBothUsersExist(ctx, userID, friendID); err != nil {
		return err
	}
	if userID == friendID {
		return newValidationError("Пользователь не может добавить в друзья самого себя")
	}

	if err := s.users.AddFriend(ctx, userID, friendID); err != nil {
		return mapUserStoreError(err)
	}
	if s.cfg.SymmetricFriendship {
		if err := s.users.AddFriend(ctx, friendID, userID); err != nil {
			return mapUserStoreError(err)
		}
	}
	return nil
}

// RemoveFriend удаляет ребро дружбы. Удаление отсутствующего ребра — no-op,
// попытка удалить самого себя — no-op с предупреждением в логе.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	s.logger.InfoContext(ctx, "Removing friend", slog.Int64("userID", userID), slog.Int64("friendID", friendID))

	if err := s.checkBothUsersExist(ctx, userID, friendID); err != nil {
		return err
	}
	if userID == friendID {
		s.logger.WarnContext(ctx, "User tried to unfriend themselves", slog.Int64("userID", userID))
		return nil
	}

	if err := s.users.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	if s.cfg.SymmetricFriendship {
		if err := s.users.RemoveFriend(ctx, friendID, userID); err != nil {
			return err
		}
	}
	return nil
}

// Friends возвращает полные записи друзей пользователя. Висячая ссылка
// на удаленного пользователя пропускается, а не роняет запрос.
func (s *UserService) Friends(ctx context.Context, userID int64) ([]*domain.User, error) {
	s.logger.DebugContext(ctx, "Listing friends", slog.Int64("userID", userID))

	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newNotFoundError("Пользователь", userID)
	}

	friendIDs, err := s.users.FriendsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.collectUsers(ctx, friendIDs)
}

// CommonFriends возвращает пересечение множеств друзей двух пользователей.
// Совпадающие id — ошибка валидации, несуществующий id — NotFound.
func (s *UserService) CommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error) {
	s.logger.DebugContext(ctx, "Listing common friends", slog.Int64("userID", userID), slog.Int64("otherID", otherID))

	if userID == otherID {
		return nil, newValidationError("Нельзя искать общих друзей пользователя с самим собой")
	}
	if err := s.checkBothUsersExist(ctx, userID, otherID); err != nil {
		return nil, err
	}

	commonIDs, err := s.users.CommonFriendIDs(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	return s.collectUsers(ctx, commonIDs)
}

// collectUsers превращает список id в обогащенные записи пользователей,
// пропуская висячие ссылки.
func (s *UserService) collectUsers(ctx context.Context, ids []int64) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				s.logger.WarnContext(ctx, "Skipping dangling friend reference", slog.Int64("userID", id))
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	if err := s.enrichUsers(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) checkBothUsersExist(ctx context.Context, userID, otherID int64) error {
	for _, id := range []int64{userID, otherID} {
		exists, err := s.users.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return newNotFoundError("Пользователь", id)
		}
	}
	return nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string, excludeID int64) error {
	if !s.cfg.UniqueEmail {
		return nil
	}
	taken, err := s.users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return &ConflictError{Message: "Пользователь с email " + email + " уже существует"}
	}
	return nil
}

// enrichUser подтягивает список друзей одного пользователя.
func (s *UserService) enrichUser(ctx context.Context, user *domain.User) error {
	friendIDs, err := s.users.FriendsOf(ctx, user.ID)
	if err != nil {
		return err
	}
	user.Friends = ensureIDs(friendIDs)
	return nil
}

// enrichUsers — батчевая форма enrichUser: один запрос к хранилищу
// на весь список.
func (s *UserService) enrichUsers(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	friendsByUser, err := s.users.FriendsByUsers(ctx, userIDs)
	if err != nil {
		return err
	}
	for _, user := range users {
		user.Friends = ensureIDs(friendsByUser[user.ID])
	}
	return nil
}

func defaultName(user *domain.User) {
	if user.Name == "" {
		user.Name = user.Login
	}
}

func mapUserStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return &ConflictError{Message: "Пользователь с таким email уже существует"}
	case errors.Is(err, store.ErrUserNotFound):
		return &NotFoundError{Entity: "Пользователь"}
	default:
		return err
	}
}
