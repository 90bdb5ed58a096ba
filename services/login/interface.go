package login

import (
	accountRepo "tillpoint/database/repository/account"
	"tillpoint/models"
	"tillpoint/services/branch"
	"tillpoint/services/devicetrust"
	"tillpoint/services/otp"
	"tillpoint/services/session"
	"tillpoint/utils"
)

// Login flow statuses returned to the caller.
const (
	StatusOTPRequired         = "otp_required"
	StatusOpeningCashRequired = "opening_cash_required"
	StatusComplete            = "complete"
)

// Principal is the fully authenticated identity a completed login produces.
type Principal struct {
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	BranchID  string `json:"branchId,omitempty"`
	Token     string `json:"token"`
}

// LoginResult is the outcome of a login step. A non-complete Status carries
// the LoginID the caller uses to continue the flow.
type LoginResult struct {
	Status    string             `json:"status"`
	LoginID   string             `json:"loginId,omitempty"`
	Message   string             `json:"message,omitempty"`
	CodeSent  bool               `json:"codeSent,omitempty"`
	Principal *Principal         `json:"principal,omitempty"`
	Session   *models.POSSession `json:"session,omitempty"`
}

// Service drives the whole login sequence: credentials, second factor,
// device gate, session resolution and opening-cash capture.
type Service interface {
	// Authenticate starts a login. Depending on role and device trust it
	// either completes, asks for a code, or asks for opening cash.
	Authenticate(identifier, secret string, device models.Device) (*LoginResult, error)
	// VerifyLoginOTP consumes the second-factor code and continues the flow.
	VerifyLoginOTP(loginID, code string, device models.Device) (*LoginResult, error)
	// ResendLoginOTP re-issues the code for a pending login.
	ResendLoginOTP(loginID string) (*LoginResult, error)
	// SubmitOpeningCash records the opening balance and completes the login.
	SubmitOpeningCash(loginID string, amount float64, notes string, device models.Device) (*LoginResult, error)
	// Cancel abandons a pending login. The issued code, if any, just
	// expires; no session or terminal allocation exists yet.
	Cancel(loginID string) error
}

// SessionStore persists in-progress login state between steps.
type SessionStore interface {
	Save(session *utils.LoginSession) error
	Get(loginID string) (*utils.LoginSession, error)
	Delete(loginID string) error
}

// DefaultLoginService is the production implementation.
type DefaultLoginService struct {
	Credentials CredentialVerifier
	Accounts    accountRepo.AccountRepository
	OTP         otp.Engine
	Trust       devicetrust.TrustStore
	Gate        *devicetrust.AccessGate
	Ledger      session.Ledger
	Branches    branch.SettingsReader
	Store       SessionStore
}
