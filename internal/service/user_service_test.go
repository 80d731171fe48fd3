package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	users *UserService
	store *store.InMemoryUserStore
}

func newUserFixture(t *testing.T, cfg UserServiceConfig) *userFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := NewValidator()
	require.NoError(t, err)

	userStore := store.NewInMemoryUserStore()
	return &userFixture{
		users: NewUserService(userStore, v, logger, cfg),
		store: userStore,
	}
}

func (f *userFixture) createUser(t *testing.T, login string) *domain.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), &domain.User{
		Email:    login + "@example.com",
		Login:    login,
		Birthday: domain.NewDate(1990, time.May, 15),
	})
	require.NoError(t, err)
	return user
}

func TestUserService_CreateDefaultsNameToLogin(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})

	user, err := f.users.Create(context.Background(), &domain.User{
		Email:    "a@b.com",
		Login:    "ab",
		Birthday: domain.NewDate(1990, time.January, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "ab", user.Name)
	assert.NotNil(t, user.Friends)
}

func TestUserService_CreateFutureBirthdayRejected(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})

	_, err := f.users.Create(context.Background(), &domain.User{
		Email:    "a@b.com",
		Login:    "ab",
		Birthday: domain.NewDate(2099, time.January, 1),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Violations, userMessages["Birthday"])
}

func TestUserService_UniqueEmailConflict(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{UniqueEmail: true})
	ctx := context.Background()

	f.createUser(t, "first")

	_, err := f.users.Create(ctx, &domain.User{
		Email:    "first@example.com",
		Login:    "second",
		Birthday: domain.NewDate(1985, time.July, 2),
	})
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)

	// Обновление на чужой email — тоже конфликт.
	second := f.createUser(t, "third")
	second.Email = "first@example.com"
	_, err = f.users.Update(ctx, second)
	require.ErrorAs(t, err, &cErr)

	// Обновление пользователя с его же email конфликтом не считается.
	first, err := f.users.GetByID(ctx, 1)
	require.NoError(t, err)
	first.Name = "renamed"
	_, err = f.users.Update(ctx, first)
	require.NoError(t, err)
}

func TestUserService_UniqueEmailDisabled(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{UniqueEmail: false})

	f.createUser(t, "first")
	_, err := f.users.Create(context.Background(), &domain.User{
		Email:    "first@example.com",
		Login:    "second",
		Birthday: domain.NewDate(1985, time.July, 2),
	})
	require.NoError(t, err)
}

func TestUserService_AddFriendDirected(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})
	ctx := context.Background()

	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	require.NoError(t, f.users.AddFriend(ctx, alice.ID, bob.ID))

	gotAlice, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, gotAlice.Friends)

	// Направленная дружба: обратного ребра нет.
	gotBob, err := f.users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, gotBob.Friends)
}

func TestUserService_AddFriendSymmetric(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{SymmetricFriendship: true})
	ctx := context.Background()

	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	require.NoError(t, f.users.AddFriend(ctx, alice.ID, bob.ID))

	gotAlice, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, gotAlice.Friends)

	gotBob, err := f.users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID}, gotBob.Friends)

	require.NoError(t, f.users.RemoveFriend(ctx, bob.ID, alice.ID))
	gotAlice, err = f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, gotAlice.Friends)
}

func TestUserService_AddFriendMissingUserIsNotFound(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})
	ctx := context.Background()

	bob := f.createUser(t, "bob")

	err := f.users.AddFriend(ctx, 999, bob.ID)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr, "NotFound, а не ошибка валидации")
	assert.Equal(t, int64(999), nfErr.ID)

	require.ErrorAs(t, f.users.AddFriend(ctx, bob.ID, 999), &nfErr)
}

func TestUserService_AddSelfFriendRejected(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})

	alice := f.createUser(t, "alice")

	err := f.users.AddFriend(context.Background(), alice.ID, alice.ID)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUserService_RemoveSelfFriendIsNoop(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})

	alice := f.createUser(t, "alice")
	require.NoError(t, f.users.RemoveFriend(context.Background(), alice.ID, alice.ID))
}

func TestUserService_RemoveFriendIdempotent(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})
	ctx := context.Background()

	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	// Удаление несуществующего ребра — no-op.
	require.NoError(t, f.users.RemoveFriend(ctx, alice.ID, bob.ID))

	require.NoError(t, f.users.AddFriend(ctx, alice.ID, bob.ID))
	require.NoError(t, f.users.RemoveFriend(ctx, alice.ID, bob.ID))
	require.NoError(t, f.users.RemoveFriend(ctx, alice.ID, bob.ID))

	got, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Friends)
}

func TestUserService_CommonFriends(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})
	ctx := context.Background()

	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	carol := f.createUser(t, "carol")
	dave := f.createUser(t, "dave")
	eve := f.createUser(t, "eve")

	// Общие друзья alice и bob: carol и dave; eve — только у alice.
	require.NoError(t, f.users.AddFriend(ctx, alice.ID, carol.ID))
	require.NoError(t, f.users.AddFriend(ctx, alice.ID, dave.ID))
	require.NoError(t, f.users.AddFriend(ctx, alice.ID, eve.ID))
	require.NoError(t, f.users.AddFriend(ctx, bob.ID, carol.ID))
	require.NoError(t, f.users.AddFriend(ctx, bob.ID, dave.ID))

	common, err := f.users.CommonFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	ids := make([]int64, len(common))
	for i, u := range common {
		ids[i] = u.ID
	}
	assert.ElementsMatch(t, []int64{carol.ID, dave.ID}, ids)
}

func TestUserService_CommonFriendsWithSelfIsValidationError(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})

	alice := f.createUser(t, "alice")

	_, err := f.users.CommonFriends(context.Background(), alice.ID, alice.ID)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr, "пересечение с самим собой — ошибка валидации, а не пустой результат")
}

func TestUserService_CommonFriendsMissingUser(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})

	alice := f.createUser(t, "alice")

	_, err := f.users.CommonFriends(context.Background(), alice.ID, 999)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestUserService_FriendsSkipsDanglingReference(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})
	ctx := context.Background()

	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	require.NoError(t, f.users.AddFriend(ctx, alice.ID, bob.ID))

	// Хранилище связей не проверяет существование: смоделируем висячую ссылку.
	require.NoError(t, f.store.AddFriend(ctx, alice.ID, 999))

	friends, err := f.users.Friends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)
}

func TestUserService_FriendsMissingUser(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})

	_, err := f.users.Friends(context.Background(), 999)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestUserService_GetAllEnrichedWithFriends(t *testing.T) {
	f := newUserFixture(t, UserServiceConfig{})
	ctx := context.Background()

	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")
	require.NoError(t, f.users.AddFriend(ctx, alice.ID, bob.ID))

	all, err := f.users.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, []int64{bob.ID}, all[0].Friends)
	assert.Equal(t, []int64{}, all[1].Friends)
}
