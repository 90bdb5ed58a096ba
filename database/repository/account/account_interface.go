package accountRepo

import "tillpoint/models"

// AccountRepository defines methods for staff account data access.
type AccountRepository interface {
	// GetByID retrieves an account by its unique ID.
	GetByID(id string) (*models.Account, error)
	// GetByUsername retrieves an account by username. Returns nil, nil when
	// no account matches.
	GetByUsername(username string) (*models.Account, error)
	// GetByTokenHash retrieves the account holding a device with the given
	// token hash.
	GetByTokenHash(tokenHash string) (*models.Account, error)
	// Create inserts a new account record.
	Create(account *models.Account) error
	// UpsertDevice records or refreshes a client device on the account.
	UpsertDevice(accountID string, device models.Device) error
}
