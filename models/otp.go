package models

import "time"

// OneTimeCode is a single issued second-factor code. A new record is created
// per issuance; verification only ever consults the most recently issued
// unused code for an account, so older records become unverifiable as soon as
// a newer one exists.
type OneTimeCode struct {
	ID          string     `bson:"id" json:"id"`
	AccountID   string     `bson:"accountId" json:"accountId"`
	Code        string     `bson:"code" json:"-"`
	Destination string     `bson:"destination" json:"destination"`
	IssuedAt    time.Time  `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt   time.Time  `bson:"expiresAt" json:"expiresAt"`
	Used        bool       `bson:"used" json:"used"`
	UsedAt      *time.Time `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
}
