package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/quizdash/server/internal/auth/jwt"
	"github.com/quizdash/server/internal/domain"
)

type stubDirectory struct {
	byEmail map[string]domain.User
	byID    map[uuid.UUID]domain.User
	logins  int
	err     error
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		byEmail: map[string]domain.User{},
		byID:    map[uuid.UUID]domain.User{},
	}
}

func (s *stubDirectory) Create(_ context.Context, user domain.User) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.User{}, domain.ErrEmailTaken
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubDirectory) GetByEmail(_ context.Context, email string) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	user, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *stubDirectory) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *stubDirectory) RecordLogin(context.Context, uuid.UUID) error {
	s.logins++
	return nil
}

func newTestService(dir UserDirectory) *Service {
	return NewService(dir, ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret:  []byte("test-access-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
	}, zerolog.Nop())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, len(hash) > 20) // bcrypt hashes are long
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("testpassword123")

	err := VerifyPassword(hash, "testpassword123")
	assert.NoError(t, err)

	err = VerifyPassword(hash, "wrongpassword")
	assert.Error(t, err)
}

func TestPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
	assert.Equal(t, ErrPasswordTooShort, err)
}

func TestRegisterAndLogin(t *testing.T) {
	dir := newStubDirectory()
	svc := newTestService(dir)

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Username: " alice ",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, loginTokens, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, loginTokens.AccessToken)
	assert.Equal(t, 1, dir.logins)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newStubDirectory())

	_, _, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "longenough"})
	assert.Error(t, err, "missing username")

	_, _, err = svc.Register(context.Background(), RegisterRequest{Username: "x", Email: "not-an-email", Password: "longenough"})
	assert.Error(t, err, "invalid email")

	_, _, err = svc.Register(context.Background(), RegisterRequest{Username: "x", Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	dir := newStubDirectory()
	svc := newTestService(dir)

	req := RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "correct-horse"}
	_, _, err := svc.Register(context.Background(), req)
	assert.NoError(t, err)

	_, _, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	dir := newStubDirectory()
	svc := newTestService(dir)

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	})
	assert.NoError(t, err)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginOAuthOnlyAccountRejected(t *testing.T) {
	dir := newStubDirectory()
	svc := newTestService(dir)

	// OAuth accounts carry no password hash and cannot log in with one.
	_, _, err := svc.LoginWithOAuth(context.Background(), OAuthUserInfo{
		Email: "oauth@example.com",
		Name:  "OAuth User",
	})
	assert.NoError(t, err)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "oauth@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithOAuthReusesExistingAccount(t *testing.T) {
	dir := newStubDirectory()
	svc := newTestService(dir)

	first, _, err := svc.LoginWithOAuth(context.Background(), OAuthUserInfo{Email: "Same@Example.com", Name: "Same User"})
	assert.NoError(t, err)

	second, _, err := svc.LoginWithOAuth(context.Background(), OAuthUserInfo{Email: "same@example.com"})
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, dir.byID, 1)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	dir := newStubDirectory()
	svc := newTestService(dir)

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	})
	assert.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// An access token is not a valid refresh token.
	_, err = svc.Refresh(context.Background(), tokens.AccessToken)
	assert.Error(t, err)
}
