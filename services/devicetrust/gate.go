package devicetrust

import (
	"tillpoint/models"
	"tillpoint/services/branch"
	"tillpoint/services/poserr"
)

// AccessGate decides whether a device may be used for POS access. Only the
// cashier role is gated; every other role passes without a device check.
type AccessGate struct {
	Trust    TrustStore
	Settings branch.SettingsReader
	// RegistryEnforced mirrors the POS_TERMINAL_REGISTRY_ENFORCED flag.
	// When false, branches with the attendance-device toggle off admit any
	// device; when true, registration is required regardless of the toggle.
	RegistryEnforced bool
}

// Evaluate runs the gate for a login attempt. A nil return means allowed.
func (g *AccessGate) Evaluate(account *models.Account, fingerprint string) error {
	if account.Role != models.RoleCashier {
		return nil
	}
	if account.BranchID == "" {
		return poserr.DeviceDeniedError{Reason: "account must be assigned to a branch"}
	}

	toggleOn, err := g.Settings.GetBool(account.BranchID, models.SettingAttendanceDeviceForPOS)
	if err != nil {
		return err
	}
	if !toggleOn && !g.RegistryEnforced {
		// Current policy: registration is not enforced for these branches.
		return nil
	}

	authorized, err := g.Trust.IsBranchDeviceAuthorized(account.BranchID, fingerprint)
	if err != nil {
		return err
	}
	if !authorized {
		return poserr.DeviceDeniedError{Reason: "this device is not registered for POS use at this branch"}
	}
	return nil
}
