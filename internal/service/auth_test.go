package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helsejournal/internal/auth"
	"helsejournal/internal/domain"
)

type memUserStore struct {
	users  map[string]*domain.User
	nextID int
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*domain.User)}
}

func (s *memUserStore) Create(ctx context.Context, user *domain.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.ErrConflict
		}
	}
	s.nextID++
	user.ID = string(rune('0' + s.nextID))
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memUserStore) Update(ctx context.Context, user *domain.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

type staticIssuer struct{}

func (staticIssuer) Issue(userID string) (string, error) { return "token-for-" + userID, nil }

func newTestAuthService(t *testing.T) (*AuthService, *memUserStore) {
	t.Helper()
	users := newMemUserStore()
	svc := NewAuthService(users, staticIssuer{}, discardLogger())
	require.NoError(t, svc.Bootstrap(context.Background(), "admin", "hunter22"))
	return svc, users
}

func TestBootstrapCreatesDefaultAccountOnce(t *testing.T) {
	svc, users := newTestAuthService(t)
	require.Len(t, users.users, 1)

	// A second bootstrap is a no-op.
	require.NoError(t, svc.Bootstrap(context.Background(), "admin", "different"))
	require.Len(t, users.users, 1)

	_, _, err := svc.Login(context.Background(), "admin", "hunter22")
	assert.NoError(t, err, "original password must survive re-bootstrap")
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	token, user, err := svc.Login(context.Background(), "admin", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "token-for-"+user.ID, token)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "hunter22")
	// Indistinguishable from a wrong password.
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, user, err := svc.Login(context.Background(), "admin", "hunter22")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{
		FullName: strptr("Kari Nordmann"),
		Theme:    strptr("dark"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kari Nordmann", *updated.FullName)
	assert.Equal(t, "dark", updated.Theme)
	assert.Equal(t, "no", updated.Language, "untouched fields keep their values")
}

func TestUpdateProfileRejectsBadTheme(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, user, err := svc.Login(context.Background(), "admin", "hunter22")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{
		Theme: strptr("neon"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChangePassword(t *testing.T) {
	svc, users := newTestAuthService(t)
	_, user, err := svc.Login(context.Background(), "admin", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "hunter22", "much-better-pw"))

	_, _, err = svc.Login(context.Background(), "admin", "hunter22")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, _, err = svc.Login(context.Background(), "admin", "much-better-pw")
	assert.NoError(t, err)

	stored := users.users[user.ID]
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "much-better-pw"))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, user, err := svc.Login(context.Background(), "admin", "hunter22")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "much-better-pw")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChangePasswordTooShort(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, user, err := svc.Login(context.Background(), "admin", "hunter22")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "hunter22", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
