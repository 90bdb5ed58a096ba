package session

import "tillpoint/models"

// StartCheck is the result of CanStartNewSession. When CanStart is false and
// Existing is set, the caller should resume that session instead.
type StartCheck struct {
	CanStart   bool               `json:"canStart"`
	Reason     string             `json:"reason,omitempty"`
	Existing   *models.POSSession `json:"existingSession,omitempty"`
	TerminalID string             `json:"terminalId,omitempty"`
}

// Ledger owns the POS session state machine: none → open → closed. No
// re-open; the next shift gets a new session instance.
type Ledger interface {
	// GetOpenSession returns the cashier's open session, or nil when none.
	GetOpenSession(cashierAccountID string) (*models.POSSession, error)
	// CanStartNewSession checks whether a new session may be opened and
	// pre-selects a terminal for it.
	CanStartNewSession(cashierAccountID, branchID string) (*StartCheck, error)
	// CreateSession opens a new session. Rejects with
	// ConcurrentSessionConflictError when another open session for the same
	// cashier slipped in since the check.
	CreateSession(cashierAccountID, branchID, terminalID string, startingCash float64, notes string) (*models.POSSession, error)
	// SetStartingCash records the opening balance captured during login.
	SetStartingCash(sessionID string, amount float64) (*models.POSSession, error)
	// CloseSession ends a shift. Closing is terminal for the instance.
	CloseSession(sessionID, closedBy string, endingCash *float64, notes string) (*models.POSSession, error)
	// UpdateTotals applies an additive delta to an open session.
	UpdateTotals(sessionID string, delta models.TotalsDelta) error
}
