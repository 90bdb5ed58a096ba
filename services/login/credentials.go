package login

import (
	"errors"

	accountRepo "tillpoint/database/repository/account"
	"tillpoint/models"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the single failure both for unknown accounts and
// wrong passwords, so responses do not reveal which usernames exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// CredentialVerifier checks a staff identifier and secret.
type CredentialVerifier interface {
	Verify(identifier, secret string) (*models.Account, error)
}

// DefaultCredentialVerifier verifies against the accounts collection with
// bcrypt.
type DefaultCredentialVerifier struct {
	Repo accountRepo.AccountRepository
}

func (v *DefaultCredentialVerifier) Verify(identifier, secret string) (*models.Account, error) {
	account, err := v.Repo.GetByUsername(identifier)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
