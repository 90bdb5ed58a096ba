package models

import "time"

// POS session statuses. Closing is terminal; a new session is opened for the
// next shift.
const (
	SessionStatusOpen   = "open"
	SessionStatusClosed = "closed"
)

// SessionTotals accumulates the running figures of a register shift.
type SessionTotals struct {
	Sales            float64 `bson:"sales" json:"sales"`
	TransactionCount int     `bson:"transactionCount" json:"transactionCount"`
	Discounts        float64 `bson:"discounts" json:"discounts"`
	Returns          float64 `bson:"returns" json:"returns"`
	Taxes            float64 `bson:"taxes" json:"taxes"`
}

// TotalsDelta is an additive update applied to an open session's totals.
type TotalsDelta struct {
	Sales            float64 `json:"sales"`
	TransactionCount int     `json:"transactionCount"`
	Discounts        float64 `json:"discounts"`
	Returns          float64 `json:"returns"`
	Taxes            float64 `json:"taxes"`
}

// POSSession is the record of a cashier's register shift. At most one open
// session may exist per cashier account at any time.
type POSSession struct {
	ID               string        `bson:"id" json:"id"`
	SessionNumber    string        `bson:"sessionNumber" json:"sessionNumber"`
	CashierAccountID string        `bson:"cashierAccountId" json:"cashierAccountId"`
	BranchID         string        `bson:"branchId" json:"branchId"`
	TerminalID       string        `bson:"terminalId,omitempty" json:"terminalId,omitempty"`
	Status           string        `bson:"status" json:"status"`
	OpenedAt         time.Time     `bson:"openedAt" json:"openedAt"`
	ClosedAt         *time.Time    `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
	ClosedBy         string        `bson:"closedBy,omitempty" json:"closedBy,omitempty"`
	StartingCash     float64       `bson:"startingCash" json:"startingCash"`
	EndingCash       *float64      `bson:"endingCash,omitempty" json:"endingCash,omitempty"`
	Totals           SessionTotals `bson:"totals" json:"totals"`
	Notes            string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Overdue          bool          `bson:"overdue,omitempty" json:"overdue,omitempty"`
}

// HasStartingCash reports whether an opening balance was captured. A zero or
// unset amount means the session is not ready to resume without the
// opening-cash step.
func (s *POSSession) HasStartingCash() bool {
	return s.StartingCash > 0
}
