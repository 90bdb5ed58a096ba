// Package terminal assigns a register from the branch pool to a cashier.
// Allocation is a read-and-pick, not a reservation: the terminal row is never
// locked, so two cashiers can end up pointed at the same shared fallback
// terminal. Terminals are labels on sessions, not exclusive hardware locks.
package terminal

import (
	terminalRepo "tillpoint/database/repository/terminal"
)

// Allocator selects a terminal for a cashier within a branch.
type Allocator interface {
	// Allocate returns the chosen terminal ID, or an empty string when the
	// branch has no active terminal at all.
	Allocate(branchID, cashierAccountID string) (string, error)
}

// DefaultAllocator is the production implementation.
type DefaultAllocator struct {
	Repo terminalRepo.TerminalRepository
}

// Allocate picks the first match in preference order: the cashier's own
// assigned terminal, then an unassigned one, then any active terminal.
func (a *DefaultAllocator) Allocate(branchID, cashierAccountID string) (string, error) {
	terminals, err := a.Repo.ListActiveByBranch(branchID)
	if err != nil {
		return "", err
	}
	if len(terminals) == 0 {
		return "", nil
	}

	for _, t := range terminals {
		if t.AssignedAccountID == cashierAccountID {
			return t.ID, nil
		}
	}
	for _, t := range terminals {
		if t.AssignedAccountID == "" {
			return t.ID, nil
		}
	}
	return terminals[0].ID, nil
}
