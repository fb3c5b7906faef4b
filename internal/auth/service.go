package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/auth/jwt"
	"github.com/quizdash/server/internal/domain"
)

// UserDirectory abstracts the user repository for auth flows.
type UserDirectory interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	RecordLogin(ctx context.Context, id uuid.UUID) error
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles registration, login and token issuance.
type Service struct {
	users    UserDirectory
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
}

// NewService creates an authentication service.
func NewService(users UserDirectory, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, *TokenPair, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, nil, fmt.Errorf("username required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("valid email required")
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("username", username).Msg("user registered")
	return &user, tokens, nil
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}

	if user.PasswordHash == "" {
		// OAuth-only account, no password login.
		return nil, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	_ = s.users.RecordLogin(ctx, user.ID)

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &user, tokens, nil
}

// LoginWithOAuth finds or creates the account for a verified OAuth identity.
func (s *Service) LoginWithOAuth(ctx context.Context, info OAuthUserInfo) (*domain.User, *TokenPair, error) {
	if info.Email == "" {
		return nil, nil, fmt.Errorf("oauth provider did not return an email")
	}
	email := strings.ToLower(info.Email)

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// existing account
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.users.Create(ctx, domain.User{
			Username: oauthUsername(info),
			Email:    email,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create oauth user: %w", err)
		}
		s.logger.Info().Str("user_id", user.ID.String()).Msg("oauth user created")
	default:
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}

	_ = s.users.RecordLogin(ctx, user.ID)

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	return s.generateTokenPair(user)
}

// ValidateToken checks an access token and returns its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(token)
}

func (s *Service) generateTokenPair(user domain.User) (*TokenPair, error) {
	id := jwt.Identity{ID: user.ID, Username: user.Username, Email: user.Email}

	access, err := s.tokenMgr.GenerateAccessToken(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokenMgr.GenerateRefreshToken(id)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

func oauthUsername(info OAuthUserInfo) string {
	base := strings.TrimSpace(info.Name)
	if base == "" {
		base = strings.SplitN(info.Email, "@", 2)[0]
	}
	base = strings.ToLower(strings.ReplaceAll(base, " ", "_"))
	// Suffix keeps usernames unique without a retry loop on collisions.
	return fmt.Sprintf("%s_%s", base, uuid.NewString()[:8])
}
