package user_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayazaki/hakoba/internal/core/user"
	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/sec"
)

type fakeRepository struct {
	users  map[int64]*user.User
	byName map[string]int64
	nextID int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:  make(map[int64]*user.User),
		byName: make(map[string]int64),
		nextID: 1,
	}
}

func (f *fakeRepository) Insert(_ context.Context, u *user.User) (*user.User, error) {
	if _, taken := f.byName[u.Name]; taken {
		return nil, apperr.Conflict("Resource already exists")
	}
	clone := *u
	clone.ID = f.nextID
	f.nextID++
	f.users[clone.ID] = &clone
	f.byName[clone.Name] = clone.ID
	return &clone, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return u, nil
}

func (f *fakeRepository) GetByName(_ context.Context, name string) (*user.User, error) {
	id, ok := f.byName[name]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return f.users[id], nil
}

func (f *fakeRepository) UpdateShowExplicit(_ context.Context, id int64, showExplicit bool) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	u.ShowExplicit = showExplicit
	return u, nil
}

type fakeSessions struct {
	sessions map[string]int64
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]int64)}
}

func (f *fakeSessions) Save(_ context.Context, token string, userID int64, _ time.Duration) error {
	f.sessions[token] = userID
	return nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (int64, error) {
	userID, ok := f.sessions[token]
	if !ok {
		return 0, apperr.Unauthorized("Session expired or revoked")
	}
	return userID, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) GenerateAccessToken(userID int64, username string, perms sec.Perms, _ bool, _ time.Duration) (string, error) {
	return fmt.Sprintf("token:%d:%s:%s", userID, username, perms), nil
}

func newService(repo user.Repository, sessions user.SessionStore) *user.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return user.NewService(repo, sessions, fakeTokenIssuer{}, logger)
}

func registerInput() user.RegisterInput {
	return user.RegisterInput{
		Name:     "ayame",
		Email:    "ayame@example.com",
		Password: "correct horse battery",
	}
}

func TestService_Register(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, newFakeSessions())

	created, err := service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	assert.Equal(t, sec.PermsUser, created.Perms)
	assert.False(t, created.ShowExplicit)
	// The stored hash verifies the original password and is not the password itself.
	stored := repo.users[created.ID]
	assert.NotEqual(t, "correct horse battery", stored.PassHash)
	assert.True(t, sec.CheckPasswordHash("correct horse battery", stored.PassHash))
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*user.RegisterInput)
	}{
		{"short_name", func(in *user.RegisterInput) { in.Name = "ab" }},
		{"bad_email", func(in *user.RegisterInput) { in.Email = "not-an-email" }},
		{"short_password", func(in *user.RegisterInput) { in.Password = "secret" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newService(newFakeRepository(), newFakeSessions())

			input := registerInput()
			tt.mutate(&input)

			_, err := service.Register(context.Background(), input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

func TestService_Register_DuplicateName(t *testing.T) {
	service := newService(newFakeRepository(), newFakeSessions())

	_, err := service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	input := registerInput()
	input.Email = "other@example.com"
	_, err = service.Register(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestService_Login(t *testing.T) {
	service := newService(newFakeRepository(), newFakeSessions())

	_, err := service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	result, err := service.Login(context.Background(), "ayame", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "ayame", result.User.Name)
}

func TestService_Login_BadCredentials(t *testing.T) {
	service := newService(newFakeRepository(), newFakeSessions())

	_, err := service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, errUnknown := service.Login(context.Background(), "nobody", "correct horse battery")
	_, errWrongPass := service.Login(context.Background(), "ayame", "wrong password!")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	// Unknown user and wrong password are indistinguishable to the caller.
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.Equal(t, "UNAUTHORIZED", apperr.As(errUnknown).Code)
}

func TestService_Refresh_RotatesSession(t *testing.T) {
	sessions := newFakeSessions()
	service := newService(newFakeRepository(), sessions)

	_, err := service.Register(context.Background(), registerInput())
	require.NoError(t, err)
	login, err := service.Login(context.Background(), "ayame", "correct horse battery")
	require.NoError(t, err)

	refreshed, err := service.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The consumed token cannot be replayed.
	_, err = service.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestService_Logout_RevokesSession(t *testing.T) {
	sessions := newFakeSessions()
	service := newService(newFakeRepository(), sessions)

	_, err := service.Register(context.Background(), registerInput())
	require.NoError(t, err)
	login, err := service.Login(context.Background(), "ayame", "correct horse battery")
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), login.RefreshToken))

	_, err = service.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}

func TestService_SetShowExplicit(t *testing.T) {
	service := newService(newFakeRepository(), newFakeSessions())

	created, err := service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	updated, err := service.SetShowExplicit(context.Background(), created.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.ShowExplicit)
}
