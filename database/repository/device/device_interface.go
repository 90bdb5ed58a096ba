package deviceRepo

import "tillpoint/models"

// DeviceRepository defines methods for the two independent device read
// models: account MFA trust and branch POS authorization.
type DeviceRepository interface {
	// GetVerified retrieves the trust record for an account/fingerprint
	// pair, or nil, nil when the device has never been verified.
	GetVerified(accountID, fingerprint string) (*models.VerifiedDevice, error)
	// UpsertVerified creates the trust record on first verification and
	// bumps lastUsedAt on later ones.
	UpsertVerified(accountID, fingerprint string) error
	// GetBranchAuthorization retrieves the registration record for a
	// branch/fingerprint pair, or nil, nil when none exists.
	GetBranchAuthorization(branchID, fingerprint string) (*models.BranchDeviceAuthorization, error)
	// RegisterBranchDevice records a device as authorized for POS use at a
	// branch.
	RegisterBranchDevice(auth *models.BranchDeviceAuthorization) error
}
