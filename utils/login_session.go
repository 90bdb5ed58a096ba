package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tillpoint/config"

	"github.com/go-redis/redis/v8"
)

const LoginSessionPrefix = "loginSession:"

// Login session statuses.
const (
	LoginStatusPendingOTP         = "pending_otp"
	LoginStatusOTPVerified        = "otp_verified"
	LoginStatusPendingOpeningCash = "pending_opening_cash"
)

// LoginSession tracks the progress of a multi-step login: credential check,
// second factor, device gate and opening-cash capture. It lives in Redis with
// a TTL, so an abandoned login simply evaporates with no session or terminal
// side effects.
type LoginSession struct {
	LoginID           string    `json:"loginId"`
	AccountID         string    `json:"accountId"`
	Username          string    `json:"username"`
	Role              string    `json:"role"`
	BranchID          string    `json:"branchId"`
	Fingerprint       string    `json:"fingerprint"`
	Destination       string    `json:"destination"`
	Status            string    `json:"status"`
	PendingSessionID  string    `json:"pendingSessionId,omitempty"`
	PendingTerminalID string    `json:"pendingTerminalId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	LastUpdatedAt     time.Time `json:"lastUpdatedAt"`
}

// LoginSessionStore persists login sessions in Redis.
type LoginSessionStore struct {
	client *redis.Client
}

// NewLoginSessionStore wraps a Redis client as a login session store.
func NewLoginSessionStore(client *redis.Client) *LoginSessionStore {
	return &LoginSessionStore{client: client}
}

// Save stores the login session with the configured TTL.
func (s *LoginSessionStore) Save(session *LoginSession) error {
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal login session: %w", err)
	}
	ctx := context.Background()
	key := LoginSessionPrefix + session.LoginID
	if err := s.client.Set(ctx, key, data, config.LoginSessionTTL()).Err(); err != nil {
		return fmt.Errorf("failed to save login session: %w", err)
	}
	return nil
}

// Get retrieves a login session, or nil, nil when it no longer exists.
func (s *LoginSessionStore) Get(loginID string) (*LoginSession, error) {
	ctx := context.Background()
	data, err := s.client.Get(ctx, LoginSessionPrefix+loginID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve login session: %w", err)
	}
	var session LoginSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login session: %w", err)
	}
	return &session, nil
}

// Delete removes a login session.
func (s *LoginSessionStore) Delete(loginID string) error {
	ctx := context.Background()
	return s.client.Del(ctx, LoginSessionPrefix+loginID).Err()
}
