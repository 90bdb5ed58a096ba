package session

import (
	"errors"
	"fmt"
	"time"

	sessionRepo "tillpoint/database/repository/session"
	"tillpoint/models"
	"tillpoint/services/branch"
	"tillpoint/services/poserr"
	"tillpoint/services/terminal"
	"tillpoint/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLedger is the production Ledger.
type DefaultLedger struct {
	Repo      sessionRepo.SessionRepository
	Allocator terminal.Allocator
	Branches  branch.SettingsReader
}

// GetOpenSession returns the cashier's open session, or nil when none.
func (l *DefaultLedger) GetOpenSession(cashierAccountID string) (*models.POSSession, error) {
	if cashierAccountID == "" {
		return nil, poserr.ValidationError{Message: "cashier account id is required"}
	}
	return l.Repo.GetOpenByCashier(cashierAccountID)
}

// CanStartNewSession checks whether a new session may be opened. A branch
// with no active terminal blocks creation outright.
func (l *DefaultLedger) CanStartNewSession(cashierAccountID, branchID string) (*StartCheck, error) {
	existing, err := l.GetOpenSession(cashierAccountID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &StartCheck{
			CanStart: false,
			Reason:   "an open session already exists for this cashier",
			Existing: existing,
		}, nil
	}

	terminalID, err := l.Allocator.Allocate(branchID, cashierAccountID)
	if err != nil {
		return nil, err
	}
	if terminalID == "" {
		return &StartCheck{
			CanStart: false,
			Reason:   "no active terminal is available for this branch",
		}, nil
	}

	return &StartCheck{CanStart: true, TerminalID: terminalID}, nil
}

// nextSessionNumber builds the branch-day sequence number, e.g.
// MAIN-20260901-0007.
func (l *DefaultLedger) nextSessionNumber(branchID string, openedAt time.Time) (string, error) {
	code, err := l.Branches.GetBranchCode(branchID)
	if err != nil {
		return "", err
	}
	day := openedAt.Format("20060102")
	seq, err := l.Repo.NextSessionNumber(branchID, day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", code, day, seq), nil
}

// CreateSession opens a new session with zeroed totals. The insert itself is
// the race guard: if another login opened a session for this cashier since
// the check, the repository's unique constraint rejects ours and we hand the
// caller the session that won.
func (l *DefaultLedger) CreateSession(cashierAccountID, branchID, terminalID string, startingCash float64, notes string) (*models.POSSession, error) {
	if cashierAccountID == "" {
		return nil, poserr.ValidationError{Message: "cashier account id is required"}
	}
	if branchID == "" {
		return nil, poserr.ValidationError{Message: "branch id is required"}
	}
	if startingCash < 0 {
		return nil, poserr.ValidationError{Message: "starting cash cannot be negative"}
	}

	now := time.Now()
	number, err := l.nextSessionNumber(branchID, now)
	if err != nil {
		return nil, err
	}

	sess := &models.POSSession{
		ID:               uuid.NewString(),
		SessionNumber:    number,
		CashierAccountID: cashierAccountID,
		BranchID:         branchID,
		TerminalID:       terminalID,
		Status:           models.SessionStatusOpen,
		OpenedAt:         now,
		StartingCash:     startingCash,
		Totals:           models.SessionTotals{},
		Notes:            notes,
	}

	if err := l.Repo.Insert(sess); err != nil {
		if errors.Is(err, sessionRepo.ErrOpenSessionExists) {
			existing, lookupErr := l.Repo.GetOpenByCashier(cashierAccountID)
			if lookupErr != nil {
				utils.GetLogger().Error("failed to fetch winning session after conflict",
					zap.String("cashierAccountId", cashierAccountID),
					zap.Error(lookupErr))
			}
			return nil, poserr.ConcurrentSessionConflictError{Existing: existing}
		}
		return nil, err
	}
	return sess, nil
}

// SetStartingCash records the opening balance captured during login.
func (l *DefaultLedger) SetStartingCash(sessionID string, amount float64) (*models.POSSession, error) {
	if amount <= 0 {
		return nil, poserr.ValidationError{Message: "starting cash must be greater than zero"}
	}
	matched, err := l.Repo.SetStartingCash(sessionID, amount)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, poserr.InvalidSessionStateError{SessionID: sessionID, Status: models.SessionStatusClosed}
	}
	return l.Repo.GetByID(sessionID)
}

// CloseSession ends a shift. Ending cash is recorded as given; reconciliation
// against running totals is a back-office concern.
func (l *DefaultLedger) CloseSession(sessionID, closedBy string, endingCash *float64, notes string) (*models.POSSession, error) {
	if sessionID == "" {
		return nil, poserr.ValidationError{Message: "session id is required"}
	}
	matched, err := l.Repo.Close(sessionID, closedBy, endingCash, notes)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, poserr.InvalidSessionStateError{SessionID: sessionID, Status: models.SessionStatusClosed}
	}
	return l.Repo.GetByID(sessionID)
}

// UpdateTotals applies an additive delta to an open session's running totals.
func (l *DefaultLedger) UpdateTotals(sessionID string, delta models.TotalsDelta) error {
	if sessionID == "" {
		return poserr.ValidationError{Message: "session id is required"}
	}
	matched, err := l.Repo.IncrementTotals(sessionID, delta)
	if err != nil {
		return err
	}
	if !matched {
		return poserr.InvalidSessionStateError{SessionID: sessionID, Status: models.SessionStatusClosed}
	}
	return nil
}
