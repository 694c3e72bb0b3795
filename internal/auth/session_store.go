package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/cache"
)

const (
	sessionKeyPrefix    = "session:"
	blacklistKeyPrefix  = "blacklist:access_token:"
	oauthStateKeyPrefix = "oauth_state:"
	oauthStateExpiry    = 10 * time.Minute
)

// SessionStoreInterface defines the interface for session storage operations.
type SessionStoreInterface interface {
	StoreSession(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (userID uint, username string, err error)
	DeleteSession(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	StoreOAuthState(ctx context.Context, state, provider string) error
	ConsumeOAuthState(ctx context.Context, state string) (provider string, err error)
}

// SessionStore keeps login sessions and revocations in Redis. The session TTL
// is the "remember me" knob: the key expires exactly when the session should.
type SessionStore struct {
	cache *cache.Client
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

// StoreSession stores a session in Redis with TTL.
func (s *SessionStore) StoreSession(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error {
	data := map[string]interface{}{
		"user_id":  userID,
		"username": username,
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	key := sessionKeyPrefix + tokenID
	return s.cache.Set(ctx, key, payload, ttl)
}

// GetSession retrieves session data from Redis.
func (s *SessionStore) GetSession(ctx context.Context, tokenID string) (userID uint, username string, err error) {
	key := sessionKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return 0, "", fmt.Errorf("session not found")
	}

	var sessionData map[string]interface{}
	if err := json.Unmarshal(data, &sessionData); err != nil {
		return 0, "", fmt.Errorf("unmarshal session data: %w", err)
	}

	uid, ok := sessionData["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid user_id in session data")
	}
	userID = uint(uid)

	username, ok = sessionData["username"].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid username in session data")
	}

	return userID, username, nil
}

// DeleteSession removes a session from Redis.
func (s *SessionStore) DeleteSession(ctx context.Context, tokenID string) error {
	key := sessionKeyPrefix + tokenID
	return s.cache.Delete(ctx, key)
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *SessionStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := blacklistKeyPrefix + tokenID
	// Store a simple marker
	return s.cache.Set(ctx, key, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *SessionStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	key := blacklistKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, nil // Not blacklisted if error (fail safe)
	}
	return data != nil, nil
}

// StoreOAuthState records a delegated-login state nonce for later verification.
func (s *SessionStore) StoreOAuthState(ctx context.Context, state, provider string) error {
	key := oauthStateKeyPrefix + state
	return s.cache.Set(ctx, key, []byte(provider), oauthStateExpiry)
}

// ConsumeOAuthState verifies and single-uses a state nonce, returning the
// provider it was issued for.
func (s *SessionStore) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	key := oauthStateKeyPrefix + state
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return "", fmt.Errorf("oauth state not found")
	}
	_ = s.cache.Delete(ctx, key)
	return string(data), nil
}
