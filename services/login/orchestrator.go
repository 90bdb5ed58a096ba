package login

import (
	"errors"
	"time"

	"tillpoint/models"
	"tillpoint/services/poserr"
	"tillpoint/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenLifetime = 12 * time.Hour

// Authenticate starts a login attempt. Each step can short-circuit: a
// failure is returned as-is and nothing later runs.
func (s *DefaultLoginService) Authenticate(identifier, secret string, device models.Device) (*LoginResult, error) {
	if identifier == "" || secret == "" {
		return nil, poserr.ValidationError{Message: "username and password are required"}
	}
	if device.Fingerprint == "" {
		return nil, poserr.ValidationError{Message: "a device fingerprint is required"}
	}

	account, err := s.Credentials.Verify(identifier, secret)
	if err != nil {
		return nil, err
	}

	mfaRequired := false
	if account.BranchID != "" {
		mfaRequired, err = s.Branches.RoleRequiresMFA(account.BranchID, account.Role)
		if err != nil {
			return nil, err
		}
	}
	if mfaRequired {
		trusted, err := s.Trust.IsAccountDeviceVerified(account.ID, device.Fingerprint)
		if err != nil {
			return nil, err
		}
		if !trusted {
			return s.beginOTPStep(account, device)
		}
	}

	return s.continueAfterMFA(account, device, nil)
}

// beginOTPStep issues a code and parks the login in Redis until the code
// comes back.
func (s *DefaultLoginService) beginOTPStep(account *models.Account, device models.Device) (*LoginResult, error) {
	destination := account.PhoneNumber
	if destination == "" {
		destination = account.Email
	}
	if destination == "" {
		return nil, poserr.ValidationError{Message: "no delivery destination is on file for this account"}
	}

	issue, err := s.OTP.Issue(account.ID, destination)
	if err != nil {
		return nil, err
	}

	ls := &utils.LoginSession{
		LoginID:     uuid.NewString(),
		AccountID:   account.ID,
		Username:    account.Username,
		Role:        account.Role,
		BranchID:    account.BranchID,
		Fingerprint: device.Fingerprint,
		Destination: destination,
		Status:      utils.LoginStatusPendingOTP,
		CreatedAt:   time.Now(),
	}
	if err := s.Store.Save(ls); err != nil {
		return nil, err
	}

	return &LoginResult{
		Status:   StatusOTPRequired,
		LoginID:  ls.LoginID,
		Message:  issue.Message,
		CodeSent: issue.Sent,
	}, nil
}

// VerifyLoginOTP consumes the code and picks the flow back up at the device
// gate.
func (s *DefaultLoginService) VerifyLoginOTP(loginID, code string, device models.Device) (*LoginResult, error) {
	ls, err := s.loadLoginSession(loginID, utils.LoginStatusPendingOTP, device)
	if err != nil {
		return nil, err
	}

	if err := s.OTP.Verify(ls.AccountID, code, device.Fingerprint); err != nil {
		return nil, err
	}

	ls.Status = utils.LoginStatusOTPVerified
	if err := s.Store.Save(ls); err != nil {
		return nil, err
	}

	account, err := s.Accounts.GetByID(ls.AccountID)
	if err != nil {
		return nil, err
	}
	return s.continueAfterMFA(account, device, ls)
}

// ResendLoginOTP re-issues the code for a pending login. The engine enforces
// the cooldown window on top of whatever the UI does.
func (s *DefaultLoginService) ResendLoginOTP(loginID string) (*LoginResult, error) {
	ls, err := s.Store.Get(loginID)
	if err != nil {
		return nil, err
	}
	if ls == nil || ls.Status != utils.LoginStatusPendingOTP {
		return nil, poserr.ValidationError{Message: "no pending verification for this login"}
	}

	issue, err := s.OTP.Resend(ls.AccountID, ls.Destination)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Status:   StatusOTPRequired,
		LoginID:  ls.LoginID,
		Message:  issue.Message,
		CodeSent: issue.Sent,
	}, nil
}

// continueAfterMFA runs the device gate and resolves the POS session. The
// gate comes first: a denied device never reaches session resolution.
func (s *DefaultLoginService) continueAfterMFA(account *models.Account, device models.Device, ls *utils.LoginSession) (*LoginResult, error) {
	if err := s.Gate.Evaluate(account, device.Fingerprint); err != nil {
		s.dropLoginSession(ls)
		return nil, err
	}

	if account.Role != models.RoleCashier {
		return s.finalize(account, device, nil, ls)
	}
	return s.resolveSession(account, device, ls)
}

// resolveSession finds or prepares the cashier's session. A session without a
// captured opening balance is not treated as ready: the flow pauses for the
// opening-cash step.
func (s *DefaultLoginService) resolveSession(account *models.Account, device models.Device, ls *utils.LoginSession) (*LoginResult, error) {
	existing, err := s.Ledger.GetOpenSession(account.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.HasStartingCash() {
			return s.finalize(account, device, existing, ls)
		}
		return s.requireOpeningCash(account, device, ls, existing.ID, "")
	}

	check, err := s.Ledger.CanStartNewSession(account.ID, account.BranchID)
	if err != nil {
		return nil, err
	}
	if !check.CanStart {
		if check.Existing != nil {
			// Another login opened one between our two reads.
			if check.Existing.HasStartingCash() {
				return s.finalize(account, device, check.Existing, ls)
			}
			return s.requireOpeningCash(account, device, ls, check.Existing.ID, "")
		}
		s.dropLoginSession(ls)
		return nil, poserr.NoTerminalAvailableError{BranchID: account.BranchID}
	}

	return s.requireOpeningCash(account, device, ls, "", check.TerminalID)
}

// requireOpeningCash parks the login until the caller submits an opening
// balance, remembering either the session awaiting its balance or the
// terminal reserved for the one about to be created.
func (s *DefaultLoginService) requireOpeningCash(account *models.Account, device models.Device, ls *utils.LoginSession, pendingSessionID, pendingTerminalID string) (*LoginResult, error) {
	if ls == nil {
		ls = &utils.LoginSession{
			LoginID:     uuid.NewString(),
			AccountID:   account.ID,
			Username:    account.Username,
			Role:        account.Role,
			BranchID:    account.BranchID,
			Fingerprint: device.Fingerprint,
			CreatedAt:   time.Now(),
		}
	}
	ls.Status = utils.LoginStatusPendingOpeningCash
	ls.PendingSessionID = pendingSessionID
	ls.PendingTerminalID = pendingTerminalID
	if err := s.Store.Save(ls); err != nil {
		return nil, err
	}

	return &LoginResult{
		Status:  StatusOpeningCashRequired,
		LoginID: ls.LoginID,
		Message: "enter the opening cash amount to start the register session",
	}, nil
}

// SubmitOpeningCash records the opening balance and completes the login.
func (s *DefaultLoginService) SubmitOpeningCash(loginID string, amount float64, notes string, device models.Device) (*LoginResult, error) {
	if amount <= 0 {
		return nil, poserr.ValidationError{Message: "opening cash must be greater than zero"}
	}
	ls, err := s.loadLoginSession(loginID, utils.LoginStatusPendingOpeningCash, device)
	if err != nil {
		return nil, err
	}

	account, err := s.Accounts.GetByID(ls.AccountID)
	if err != nil {
		return nil, err
	}

	var sess *models.POSSession
	if ls.PendingSessionID != "" {
		sess, err = s.Ledger.SetStartingCash(ls.PendingSessionID, amount)
		if err != nil {
			return nil, err
		}
	} else {
		sess, err = s.Ledger.CreateSession(account.ID, ls.BranchID, ls.PendingTerminalID, amount, notes)
		if err != nil {
			var conflict poserr.ConcurrentSessionConflictError
			if errors.As(err, &conflict) && conflict.Existing != nil {
				// A concurrent login won the race; resume its session.
				utils.GetLogger().Info("resuming concurrently created session",
					zap.String("cashierAccountId", account.ID),
					zap.String("sessionId", conflict.Existing.ID))
				sess = conflict.Existing
				if !sess.HasStartingCash() {
					sess, err = s.Ledger.SetStartingCash(sess.ID, amount)
					if err != nil {
						return nil, err
					}
				}
			} else {
				return nil, err
			}
		}
	}

	return s.finalize(account, device, sess, ls)
}

// Cancel abandons a pending login with no side effects beyond the issued
// code, which simply expires.
func (s *DefaultLoginService) Cancel(loginID string) error {
	if loginID == "" {
		return poserr.ValidationError{Message: "login id is required"}
	}
	return s.Store.Delete(loginID)
}

// loadLoginSession fetches a login session and checks it is at the expected
// step and bound to the same device.
func (s *DefaultLoginService) loadLoginSession(loginID, wantStatus string, device models.Device) (*utils.LoginSession, error) {
	if loginID == "" {
		return nil, poserr.ValidationError{Message: "login id is required"}
	}
	ls, err := s.Store.Get(loginID)
	if err != nil {
		return nil, err
	}
	if ls == nil {
		return nil, poserr.ValidationError{Message: "this login has expired; sign in again"}
	}
	if ls.Status != wantStatus {
		return nil, poserr.ValidationError{Message: "this login is not at the expected step"}
	}
	if device.Fingerprint != "" && ls.Fingerprint != device.Fingerprint {
		return nil, poserr.ValidationError{Message: "this login belongs to a different device"}
	}
	return ls, nil
}

// finalize issues the JWT, records the device on the account and clears the
// login session.
func (s *DefaultLoginService) finalize(account *models.Account, device models.Device, sess *models.POSSession, ls *utils.LoginSession) (*LoginResult, error) {
	token, err := utils.GenerateToken(account.ID, account.Role, device.Fingerprint, tokenLifetime)
	if err != nil {
		return nil, err
	}

	device.TokenHash = utils.HashToken(token)
	device.LastLogin = time.Now()
	if err := s.Accounts.UpsertDevice(account.ID, device); err != nil {
		return nil, err
	}

	s.dropLoginSession(ls)

	return &LoginResult{
		Status: StatusComplete,
		Principal: &Principal{
			AccountID: account.ID,
			Username:  account.Username,
			Role:      account.Role,
			BranchID:  account.BranchID,
			Token:     token,
		},
		Session: sess,
	}, nil
}

func (s *DefaultLoginService) dropLoginSession(ls *utils.LoginSession) {
	if ls == nil {
		return
	}
	if err := s.Store.Delete(ls.LoginID); err != nil {
		utils.GetLogger().Warn("failed to delete login session", zap.Error(err))
	}
}
