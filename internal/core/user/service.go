package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/constants"
	"github.com/ayazaki/hakoba/internal/platform/sec"
	"github.com/ayazaki/hakoba/internal/platform/validate"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
	// bcrypt truncates input beyond 72 bytes, so longer passwords are
	// rejected instead of silently weakened.
	maxPasswordLen = 72
)

// TokenIssuer mints signed access tokens. Implemented by [sec.TokenService].
type TokenIssuer interface {
	GenerateAccessToken(userID int64, username string, perms sec.Perms, showExplicit bool, timeToLive time.Duration) (string, error)
}

type Service struct {
	repo     Repository
	sessions SessionStore
	tokens   TokenIssuer
	logger   *slog.Logger
}

func NewService(repo Repository, sessions SessionStore, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult bundles the outcome of a successful login or refresh. The
// refresh token is an opaque session handle, never a JWT: revocation must be
// instant, so its validity lives server-side.
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// Register creates a new account at the regular user tier.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	v := validate.New()
	v.Required("name", input.Name)
	v.MinLen("name", input.Name, minUsernameLen)
	v.MaxLen("name", input.Name, maxUsernameLen)
	v.Email("email", input.Email)
	v.MinLen("password", input.Password, minPasswordLen)
	v.MaxLen("password", input.Password, maxPasswordLen)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	created, err := service.repo.Insert(ctx, &User{
		Name:     input.Name,
		Email:    input.Email,
		PassHash: hash,
		Perms:    sec.PermsUser,
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user_registered",
		slog.Int64("user_id", created.ID),
		slog.String("name", created.Name),
	)
	return created, nil
}

// Login verifies credentials and opens a session. Unknown names and wrong
// passwords produce the identical error, so login probing cannot enumerate
// accounts.
func (service *Service) Login(ctx context.Context, name, password string) (*AuthResult, error) {
	invalidCredentials := apperr.Unauthorized("Invalid username or password")

	u, err := service.repo.GetByName(ctx, name)
	if err != nil {
		return nil, invalidCredentials
	}
	if !sec.CheckPasswordHash(password, u.PassHash) {
		return nil, invalidCredentials
	}

	return service.openSession(ctx, u)
}

// Refresh rotates a refresh session and mints a fresh access token. The old
// token is consumed: replaying it after rotation fails.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := service.sessions.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := service.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Session expired or revoked")
	}

	if err := service.sessions.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return service.openSession(ctx, u)
}

// Logout revokes a refresh session. Revoking an already-expired token is a
// no-op, not an error.
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	return service.sessions.Delete(ctx, refreshToken)
}

// Me returns the account behind an authenticated request.
func (service *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return service.repo.GetByID(ctx, userID)
}

// SetShowExplicit stores the account's explicit-content preference.
func (service *Service) SetShowExplicit(ctx context.Context, userID int64, showExplicit bool) (*User, error) {
	return service.repo.UpdateShowExplicit(ctx, userID, showExplicit)
}

func (service *Service) openSession(ctx context.Context, u *User) (*AuthResult, error) {
	accessToken, err := service.tokens.GenerateAccessToken(
		u.ID, u.Name, u.Perms, u.ShowExplicit, constants.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshToken := uuid.NewString()
	if err := service.sessions.Save(ctx, refreshToken, u.ID, constants.RefreshTokenTTL); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
