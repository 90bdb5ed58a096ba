package terminalRepo

import "tillpoint/models"

// TerminalRepository defines read access to the branch terminal pool. The
// allocator only selects; terminal lifecycle belongs to branch administration.
type TerminalRepository interface {
	// ListActiveByBranch retrieves all active terminals for a branch.
	ListActiveByBranch(branchID string) ([]models.Terminal, error)
	// GetByID retrieves a terminal by its unique ID.
	GetByID(id string) (*models.Terminal, error)
}
