package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	otpRepo "tillpoint/database/repository/otp"
	"tillpoint/models"
	"tillpoint/services/devicetrust"
	"tillpoint/services/notification"
	"tillpoint/services/poserr"
	"tillpoint/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const codeLength = 6

// MaxVerifyAttempts is declared policy but not yet enforced: lockout after
// repeated failures is an open product decision. See DESIGN.md.
const MaxVerifyAttempts = 5

// DefaultEngine is the production Engine.
type DefaultEngine struct {
	Repo     otpRepo.OTPRepository
	Trust    devicetrust.TrustStore
	Sender   notification.Sender
	Cooldown CooldownGuard
	TTL      time.Duration
}

// generateNumericCode produces a uniformly random 6-digit code.
func generateNumericCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}

func validCodeShape(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Issue generates a fresh code, stores it and attempts delivery. Delivery
// failure is soft: the code stays verifiable and the result says what
// happened.
func (e *DefaultEngine) Issue(accountID, destination string) (*IssueResult, error) {
	if accountID == "" {
		return nil, poserr.ValidationError{Message: "account id is required"}
	}
	if destination == "" {
		return nil, poserr.ValidationError{Message: "a delivery destination is required"}
	}

	value, err := generateNumericCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	code := &models.OneTimeCode{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Code:        value,
		Destination: destination,
		IssuedAt:    now,
		ExpiresAt:   now.Add(e.TTL),
	}
	if err := e.Repo.Create(code); err != nil {
		return nil, err
	}
	if err := e.Cooldown.Mark(accountID); err != nil {
		utils.GetLogger().Warn("failed to mark otp cooldown", zap.Error(err))
	}

	expiryMinutes := int(e.TTL.Minutes())
	if err := e.Sender.Send(destination, value, expiryMinutes); err != nil {
		utils.GetLogger().Warn("one-time code delivery failed",
			zap.String("accountId", accountID),
			zap.Error(err))
		return &IssueResult{
			Sent:    false,
			Message: "the code could not be delivered; contact your manager if it does not arrive",
		}, nil
	}

	return &IssueResult{
		Sent:    true,
		Message: fmt.Sprintf("a verification code was sent, valid for %d minutes", expiryMinutes),
	}, nil
}

// Resend re-issues a code after the cooldown window. The engine enforces the
// window itself: a caller that skipped its own cooldown still gets rejected.
func (e *DefaultEngine) Resend(accountID, destination string) (*IssueResult, error) {
	active, err := e.Cooldown.Active(accountID)
	if err != nil {
		utils.GetLogger().Warn("failed to read otp cooldown", zap.Error(err))
	}
	if active {
		return nil, poserr.ValidationError{Message: "please wait before requesting another code"}
	}
	return e.Issue(accountID, destination)
}

// Verify checks a candidate against the latest unused code. Only that record
// is ever consulted, so every older code is dead the moment a newer one is
// issued. Failures share one constant error.
func (e *DefaultEngine) Verify(accountID, candidateCode, fingerprint string) error {
	if accountID == "" {
		return poserr.ValidationError{Message: "account id is required"}
	}
	if !validCodeShape(candidateCode) {
		return poserr.ValidationError{Message: "the code must be 6 digits"}
	}

	latest, err := e.Repo.LatestUnused(accountID)
	if err != nil {
		return err
	}
	if latest == nil {
		return poserr.ExpiredOrUsedCodeError{}
	}
	if !time.Now().Before(latest.ExpiresAt) {
		return poserr.ExpiredOrUsedCodeError{}
	}
	if subtle.ConstantTimeCompare([]byte(latest.Code), []byte(candidateCode)) != 1 {
		return poserr.ExpiredOrUsedCodeError{}
	}

	if err := e.Repo.MarkUsed(latest.ID); err != nil {
		return err
	}
	if fingerprint != "" {
		if err := e.Trust.MarkDeviceVerified(accountID, fingerprint); err != nil {
			utils.GetLogger().Warn("failed to record verified device",
				zap.String("accountId", accountID),
				zap.Error(err))
		}
	}
	return nil
}
