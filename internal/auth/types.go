package auth

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token to exchange for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPair bundles the issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Supported OAuth providers.
const OAuthProviderGoogle = "google"
