package otpRepo

import (
	"time"

	"tillpoint/models"
)

// OTPRepository defines methods for one-time code data access.
type OTPRepository interface {
	// Create inserts a new code record.
	Create(code *models.OneTimeCode) error
	// LatestUnused retrieves the most recently issued unused code for an
	// account, or nil, nil when none exists. Verification only ever consults
	// this record, which is what renders older codes unverifiable.
	LatestUnused(accountID string) (*models.OneTimeCode, error)
	// MarkUsed flags a code as consumed.
	MarkUsed(id string) error
	// PurgeExpired deletes code records whose expiry is before the cutoff
	// and returns the number removed.
	PurgeExpired(cutoff time.Time) (int64, error)
}
