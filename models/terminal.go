package models

import "time"

// Terminal statuses.
const (
	TerminalStatusActive   = "active"
	TerminalStatusInactive = "inactive"
)

// Terminal is a logical register belonging to a branch. Lifecycle is owned by
// branch administration; the allocator only reads and selects.
type Terminal struct {
	ID                string    `bson:"id" json:"id"`
	BranchID          string    `bson:"branchId" json:"branchId"`
	Name              string    `bson:"name" json:"name"`
	Status            string    `bson:"status" json:"status"`
	AssignedAccountID string    `bson:"assignedAccountId,omitempty" json:"assignedAccountId,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updatedAt"`
}
