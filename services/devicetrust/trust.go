// Package devicetrust holds the two independent device read models and the
// POS device gate built on top of them. Account MFA trust and branch POS
// authorization never cross-invalidate: one recognizes the person's device,
// the other admits the kiosk.
package devicetrust

import (
	deviceRepo "tillpoint/database/repository/device"
)

// TrustStore answers the two device questions the login flow asks.
type TrustStore interface {
	// IsAccountDeviceVerified reports whether the fingerprint has passed a
	// second-factor check for this account before.
	IsAccountDeviceVerified(accountID, fingerprint string) (bool, error)
	// IsBranchDeviceAuthorized reports whether the fingerprint is an active
	// registered POS device for the branch.
	IsBranchDeviceAuthorized(branchID, fingerprint string) (bool, error)
	// MarkDeviceVerified upserts the MFA trust record after a successful
	// code verification.
	MarkDeviceVerified(accountID, fingerprint string) error
}

// DefaultTrustStore is the production implementation.
type DefaultTrustStore struct {
	Repo deviceRepo.DeviceRepository
}

func (s *DefaultTrustStore) IsAccountDeviceVerified(accountID, fingerprint string) (bool, error) {
	if accountID == "" || fingerprint == "" {
		return false, nil
	}
	dev, err := s.Repo.GetVerified(accountID, fingerprint)
	if err != nil {
		return false, err
	}
	return dev != nil, nil
}

func (s *DefaultTrustStore) IsBranchDeviceAuthorized(branchID, fingerprint string) (bool, error) {
	if branchID == "" || fingerprint == "" {
		return false, nil
	}
	auth, err := s.Repo.GetBranchAuthorization(branchID, fingerprint)
	if err != nil {
		return false, err
	}
	return auth != nil && auth.Active, nil
}

func (s *DefaultTrustStore) MarkDeviceVerified(accountID, fingerprint string) error {
	return s.Repo.UpsertVerified(accountID, fingerprint)
}
