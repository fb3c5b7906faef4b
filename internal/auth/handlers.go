package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdash/server/internal/domain"
	httperrors "github.com/quizdash/server/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc  *Service
	oauthSvc *OAuthService
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, oauthSvc *OAuthService, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc:  authSvc,
		oauthSvc: oauthSvc,
		logger:   logger.With().Str("component", "auth_http").Logger(),
	}
}

// Register handles POST /api/auth/register
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken):
			httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeAlreadyExists, err.Error())
		case errors.Is(err, ErrPasswordTooShort):
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "password")
		default:
			httperrors.RespondBadRequest(w, httperrors.ErrCodeRegistrationFailed, err.Error())
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":       user.ID.String(),
		"username":      user.Username,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

// Login handles POST /api/auth/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeLoginFailed, "Invalid email or password")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		httperrors.RespondInternalError(w, "Login failed")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":       user.ID.String(),
		"username":      user.Username,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

// RefreshToken handles POST /api/auth/refresh
func (h *HTTPHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Refresh token required")
		return
	}

	tokens, err := h.authSvc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or expired refresh token")
		return
	}

	h.respondJSON(w, http.StatusOK, tokens)
}

// OAuthStart handles GET /api/auth/oauth/{provider}/start
func (h *HTTPHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.oauthSvc == nil {
		httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	provider := r.PathValue("provider")
	state := uuid.NewString()

	authURL, err := h.oauthSvc.StartOAuthFlow(provider, state)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthStartFailed, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"auth_url": authURL,
		"state":    state,
	})
}

// OAuthCallback handles GET /api/auth/oauth/{provider}/callback
func (h *HTTPHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauthSvc == nil {
		httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthMissingCode, "Missing authorization code")
		return
	}

	state := r.URL.Query().Get("state")
	if cookie, err := r.Cookie("oauth_state"); err != nil || cookie.Value == "" || cookie.Value != state {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthInvalidState, "OAuth state mismatch")
		return
	}

	provider := r.PathValue("provider")
	info, err := h.oauthSvc.HandleOAuthCallback(r.Context(), provider, code)
	if err != nil {
		h.logger.Error().Err(err).Str("provider", provider).Msg("oauth callback failed")
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthCallbackFailed, "OAuth sign-in failed")
		return
	}

	user, tokens, err := h.authSvc.LoginWithOAuth(r.Context(), *info)
	if err != nil {
		h.logger.Error().Err(err).Msg("oauth login failed")
		httperrors.RespondInternalError(w, "OAuth sign-in failed")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":       user.ID.String(),
		"username":      user.Username,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
