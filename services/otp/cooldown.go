package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const cooldownPrefix = "otpCooldown:"

// RedisCooldownGuard keys the cooldown window off a Redis TTL: the key
// existing means the account is still inside the window.
type RedisCooldownGuard struct {
	Client *redis.Client
	Window time.Duration
}

func (g *RedisCooldownGuard) Active(accountID string) (bool, error) {
	ctx := context.Background()
	_, err := g.Client.Get(ctx, cooldownPrefix+accountID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cooldown key: %w", err)
	}
	return true, nil
}

func (g *RedisCooldownGuard) Mark(accountID string) error {
	ctx := context.Background()
	if err := g.Client.Set(ctx, cooldownPrefix+accountID, time.Now().Unix(), g.Window).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown key: %w", err)
	}
	return nil
}
