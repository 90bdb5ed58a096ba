package otp

// IssueResult reports the outcome of generating and delivering a code.
// Sent=false with a non-empty Message means the code exists and is
// verifiable, but delivery failed and the caller should tell the user.
type IssueResult struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// Engine issues and verifies one-time numeric codes.
type Engine interface {
	// Issue generates a fresh code for the account and attempts delivery.
	// Any previously issued unused code stops being verifiable.
	Issue(accountID, destination string) (*IssueResult, error)
	// Resend re-issues a code, honoring the cooldown window even when the
	// caller's own cooldown was bypassed.
	Resend(accountID, destination string) (*IssueResult, error)
	// Verify checks a candidate against the latest unused, unexpired code.
	// On success the code is consumed and the device fingerprint becomes
	// MFA-trusted for the account.
	Verify(accountID, candidateCode, fingerprint string) error
}

// CooldownGuard tracks the per-account issuance cooldown.
type CooldownGuard interface {
	// Active reports whether the account is still inside the cooldown window.
	Active(accountID string) (bool, error)
	// Mark starts a new cooldown window for the account.
	Mark(accountID string) error
}
