// Package branch exposes branch configuration to the login flow: the POS
// device toggle, the MFA role list and the branch code used in session
// numbers.
package branch

import (
	"context"
	"fmt"
	"strings"
	"time"

	branchRepo "tillpoint/database/repository/branch"
	"tillpoint/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SettingsReader is the read model the gate and orchestrator consult.
type SettingsReader interface {
	// GetSetting returns the raw value of a branch setting, empty when unset.
	GetSetting(branchID, key string) (string, error)
	// GetBool interprets a branch setting as a boolean toggle.
	GetBool(branchID, key string) (bool, error)
	// RoleRequiresMFA reports whether the branch requires a second factor
	// for the given role.
	RoleRequiresMFA(branchID, role string) (bool, error)
	// GetBranchCode returns the short code used to scope session numbers.
	GetBranchCode(branchID string) (string, error)
}

// DefaultSettingsReader reads settings from the repository with a short
// Redis read-through cache in front. Settings change rarely and are read on
// every login.
type DefaultSettingsReader struct {
	Repo     branchRepo.BranchRepository
	Cache    *redis.Client
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewDefaultSettingsReader constructs the production settings reader.
func NewDefaultSettingsReader(repo branchRepo.BranchRepository, cache *redis.Client, logger *zap.Logger) *DefaultSettingsReader {
	return &DefaultSettingsReader{
		Repo:     repo,
		Cache:    cache,
		CacheTTL: 30 * time.Second,
		Logger:   logger,
	}
}

func (r *DefaultSettingsReader) cacheKey(branchID, key string) string {
	return fmt.Sprintf("branchSetting:%s:%s", branchID, key)
}

// GetSetting returns the raw value of a branch setting.
func (r *DefaultSettingsReader) GetSetting(branchID, key string) (string, error) {
	ctx := context.Background()
	if r.Cache != nil {
		cached, err := r.Cache.Get(ctx, r.cacheKey(branchID, key)).Result()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			r.Logger.Warn("branch setting cache read failed", zap.Error(err))
		}
	}

	value, err := r.Repo.GetSetting(branchID, key)
	if err != nil {
		return "", err
	}
	if r.Cache != nil {
		if err := r.Cache.Set(ctx, r.cacheKey(branchID, key), value, r.CacheTTL).Err(); err != nil {
			r.Logger.Warn("branch setting cache write failed", zap.Error(err))
		}
	}
	return value, nil
}

// GetBool interprets a branch setting as a boolean toggle.
func (r *DefaultSettingsReader) GetBool(branchID, key string) (bool, error) {
	value, err := r.GetSetting(branchID, key)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	default:
		return false, nil
	}
}

// RoleRequiresMFA reports whether the branch requires a second factor for the
// given role. The setting holds a comma-separated role list.
func (r *DefaultSettingsReader) RoleRequiresMFA(branchID, role string) (bool, error) {
	value, err := r.GetSetting(branchID, models.SettingMFARequiredRoles)
	if err != nil {
		return false, err
	}
	for _, entry := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(entry), role) {
			return true, nil
		}
	}
	return false, nil
}

// GetBranchCode returns the short code used to scope session numbers. Falls
// back to the uppercased branch ID when the branch record carries no code.
func (r *DefaultSettingsReader) GetBranchCode(branchID string) (string, error) {
	branch, err := r.Repo.GetByID(branchID)
	if err != nil {
		return "", err
	}
	if branch == nil || branch.Code == "" {
		return strings.ToUpper(branchID), nil
	}
	return branch.Code, nil
}
