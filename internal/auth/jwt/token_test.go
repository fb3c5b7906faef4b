package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testManager() *Manager {
	return NewManager(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := testManager()
	id := Identity{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}

	token, err := mgr.GenerateAccessToken(id)
	assert.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, id.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "quizdash", claims.Issuer)
}

func TestTokenSecretsAreIndependent(t *testing.T) {
	mgr := testManager()
	id := Identity{ID: uuid.New(), Username: "alice"}

	access, err := mgr.GenerateAccessToken(id)
	assert.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(id)
	assert.NoError(t, err)

	_, err = mgr.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = mgr.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	mgr := NewManager(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     -time.Minute,
	})

	token, err := mgr.GenerateAccessToken(Identity{ID: uuid.New(), Username: "alice"})
	assert.NoError(t, err)

	_, err = mgr.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestGarbageToken(t *testing.T) {
	mgr := testManager()
	_, err := mgr.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDefaultTTLs(t *testing.T) {
	mgr := testManager()
	assert.Equal(t, time.Hour, mgr.AccessTTL())
}
