package branchRepo

import "tillpoint/models"

// BranchRepository defines read access to branches and their settings.
type BranchRepository interface {
	// GetByID retrieves a branch by its unique ID, or nil, nil when absent.
	GetByID(id string) (*models.Branch, error)
	// GetSetting retrieves a branch-scoped setting value. Returns an empty
	// string when the setting is not present.
	GetSetting(branchID, key string) (string, error)
	// PutSetting stores a branch-scoped setting value.
	PutSetting(branchID, key, value string) error
}
