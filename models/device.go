package models

import "time"

// VerifiedDevice marks a device fingerprint as MFA-trusted for an account.
// Created on the first successful code verification from that fingerprint and
// bumped on later ones. Never deleted automatically.
type VerifiedDevice struct {
	AccountID       string    `bson:"accountId" json:"accountId"`
	Fingerprint     string    `bson:"fingerprint" json:"fingerprint"`
	FirstVerifiedAt time.Time `bson:"firstVerifiedAt" json:"firstVerifiedAt"`
	LastUsedAt      time.Time `bson:"lastUsedAt" json:"lastUsedAt"`
}

// BranchDeviceAuthorization pre-registers a device for POS use at a branch,
// e.g. an attendance terminal. Independent of account MFA trust: this gates
// kiosk access, not the person.
type BranchDeviceAuthorization struct {
	BranchID     string    `bson:"branchId" json:"branchId"`
	Fingerprint  string    `bson:"fingerprint" json:"fingerprint"`
	Label        string    `bson:"label" json:"label"`
	Active       bool      `bson:"active" json:"active"`
	RegisteredAt time.Time `bson:"registeredAt" json:"registeredAt"`
}
