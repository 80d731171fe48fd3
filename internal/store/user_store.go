package store

import (
	"context"
	"sort"
	"sync"

	"filmorate-service/internal/domain"
)

// UserStore определяет интерфейс хранилища пользователей вместе со связями
// пользователь→друг. Ребро дружбы направленное: AddFriend(a, b) добавляет
// b в друзья a, но не наоборот (симметричный режим — забота сервиса).
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)

	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	FriendsOf(ctx context.Context, userID int64) ([]int64, error)
	FriendsByUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error)
	CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error)
}

// InMemoryUserStore хранит пользователей и дружбы в памяти процесса.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*domain.User
	friends map[int64]map[int64]struct{} // user_id -> set of friend_ids
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[int64]*domain.User),
		friends: make(map[int64]map[int64]struct{}),
	}
}

func (s *InMemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user.ID = s.nextID

	stored := *user
	stored.Friends = nil
	s.users[user.ID] = &stored
	return nil
}

func (s *InMemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	stored := *user
	stored.Friends = nil
	s.users[user.ID] = &stored
	return nil
}

func (s *InMemoryUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (s *InMemoryUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		userCopy := *user
		users = append(users, &userCopy)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *InMemoryUserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *InMemoryUserStore) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.friends[userID]
	if !ok {
		set = make(map[int64]struct{})
		s.friends[userID] = set
	}
	set[friendID] = struct{}{}
	return nil
}

func (s *InMemoryUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.friends[userID]; ok {
		delete(set, friendID)
	}
	return nil
}

func (s *InMemoryUserStore) FriendsOf(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.friends[userID]), nil
}

func (s *InMemoryUserStore) FriendsByUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64][]int64)
	for _, id := range userIDs {
		if set, ok := s.friends[id]; ok && len(set) > 0 {
			result[id] = sortedIDs(set)
		}
	}
	return result, nil
}

func (s *InMemoryUserStore) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	other := s.friends[otherID]
	if len(other) == 0 {
		return nil, nil
	}
	common := make(map[int64]struct{})
	for id := range s.friends[userID] {
		if _, ok := other[id]; ok {
			common[id] = struct{}{}
		}
	}
	return sortedIDs(common), nil
}
