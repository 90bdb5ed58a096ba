package sessionRepo

import (
	"errors"
	"time"

	"tillpoint/models"
)

// ErrOpenSessionExists is returned by Insert when the cashier already has an
// open session. The collection carries a unique index on cashierAccountId
// filtered to status=open, so two racing inserts cannot both land: the
// duplicate-key failure of the second surfaces as this error.
var ErrOpenSessionExists = errors.New("an open session already exists for this cashier")

// SessionRepository defines data access for POS sessions.
type SessionRepository interface {
	// Insert creates a new session document. Fails with ErrOpenSessionExists
	// when the cashier already holds an open session.
	Insert(session *models.POSSession) error
	// GetByID retrieves a session by its unique ID, or nil, nil when absent.
	GetByID(id string) (*models.POSSession, error)
	// GetOpenByCashier retrieves the cashier's open session, or nil, nil.
	GetOpenByCashier(cashierAccountID string) (*models.POSSession, error)
	// SetStartingCash records the opening balance on an open session.
	// Returns false when no open session matched.
	SetStartingCash(id string, amount float64) (bool, error)
	// Close marks an open session closed. Returns false when no open
	// session matched, i.e. the session was already closed or is unknown.
	Close(id, closedBy string, endingCash *float64, notes string) (bool, error)
	// IncrementTotals applies an additive delta to an open session's running
	// totals. Returns false when no open session matched.
	IncrementTotals(id string, delta models.TotalsDelta) (bool, error)
	// NextSessionNumber atomically advances and returns the per-branch
	// per-day sequence used in session numbers.
	NextSessionNumber(branchID, day string) (int, error)
	// FlagOverdue marks sessions still open past the cutoff so end-of-day
	// reports can surface them. Returns the number flagged.
	FlagOverdue(cutoff time.Time) (int64, error)
}
