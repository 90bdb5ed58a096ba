package models

import "time"

// Account roles recognized by the login flow.
const (
	RoleCashier = "cashier"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Account is a staff account able to sign in to the POS backend.
type Account struct {
	ID           string    `bson:"id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Role         string    `bson:"role" json:"role"`
	BranchID     string    `bson:"branchId" json:"branchId"`
	PhoneNumber  string    `bson:"phoneNumber" json:"phoneNumber"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Devices      []Device  `bson:"devices" json:"devices"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// Device records a client device an account has signed in from.
type Device struct {
	Fingerprint string    `bson:"fingerprint" json:"fingerprint"`
	DeviceName  string    `bson:"deviceName" json:"deviceName"`
	IP          string    `bson:"ip" json:"ip"`
	LastLogin   time.Time `bson:"lastLogin" json:"lastLogin"`
	TokenHash   string    `bson:"tokenHash" json:"-"`
}
