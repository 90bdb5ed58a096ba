package models

import "time"

// Branch setting keys read by the login flow.
const (
	SettingAttendanceDeviceForPOS = "allow_attendance_device_for_pos"
	SettingMFARequiredRoles       = "mfa_required_roles"
)

// Branch is a retail location. Code is the short prefix used in
// branch-scoped session numbers.
type Branch struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Code      string    `bson:"code" json:"code"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// BranchSetting is a single configuration value scoped to a branch.
type BranchSetting struct {
	BranchID  string    `bson:"branchId" json:"branchId"`
	Key       string    `bson:"key" json:"key"`
	Value     string    `bson:"value" json:"value"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
