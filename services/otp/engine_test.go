package otp

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"tillpoint/models"
	"tillpoint/services/poserr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCodeRepo is an in-memory OTPRepository.
type memCodeRepo struct {
	mu    sync.Mutex
	codes []*models.OneTimeCode
}

func (r *memCodeRepo) Create(code *models.OneTimeCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	r.codes = append(r.codes, &cp)
	return nil
}

func (r *memCodeRepo) LatestUnused(accountID string) (*models.OneTimeCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []*models.OneTimeCode
	for _, c := range r.codes {
		if c.AccountID == accountID && !c.Used {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].IssuedAt.After(matches[j].IssuedAt)
	})
	cp := *matches[0]
	return &cp, nil
}

func (r *memCodeRepo) MarkUsed(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.ID == id {
			c.Used = true
			now := time.Now()
			c.UsedAt = &now
			return nil
		}
	}
	return fmt.Errorf("one-time code with id %s not found", id)
}

func (r *memCodeRepo) PurgeExpired(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.OneTimeCode
	var removed int64
	for _, c := range r.codes {
		if c.ExpiresAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.codes = kept
	return removed, nil
}

// expire backdates the latest unused code for an account.
func (r *memCodeRepo) expire(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.AccountID == accountID && !c.Used {
			c.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

// latestValue returns the plaintext of the latest unused code.
func (r *memCodeRepo) latestValue(accountID string) string {
	c, _ := r.LatestUnused(accountID)
	if c == nil {
		return ""
	}
	return c.Code
}

// memTrust records device verification upserts.
type memTrust struct {
	verified map[string]bool
}

func newMemTrust() *memTrust {
	return &memTrust{verified: make(map[string]bool)}
}

func (t *memTrust) IsAccountDeviceVerified(accountID, fingerprint string) (bool, error) {
	return t.verified[accountID+":"+fingerprint], nil
}

func (t *memTrust) IsBranchDeviceAuthorized(branchID, fingerprint string) (bool, error) {
	return false, nil
}

func (t *memTrust) MarkDeviceVerified(accountID, fingerprint string) error {
	t.verified[accountID+":"+fingerprint] = true
	return nil
}

// memSender captures deliveries and can be told to fail.
type memSender struct {
	sent []string
	fail bool
}

func (s *memSender) Send(destination, code string, expiryMinutes int) error {
	if s.fail {
		return errors.New("gateway unreachable")
	}
	s.sent = append(s.sent, destination)
	return nil
}

// memCooldown is an in-memory CooldownGuard.
type memCooldown struct {
	marked map[string]time.Time
	window time.Duration
}

func newMemCooldown(window time.Duration) *memCooldown {
	return &memCooldown{marked: make(map[string]time.Time), window: window}
}

func (c *memCooldown) Active(accountID string) (bool, error) {
	at, ok := c.marked[accountID]
	if !ok {
		return false, nil
	}
	return time.Since(at) < c.window, nil
}

func (c *memCooldown) Mark(accountID string) error {
	c.marked[accountID] = time.Now()
	return nil
}

func newTestEngine() (*DefaultEngine, *memCodeRepo, *memTrust, *memSender, *memCooldown) {
	repo := &memCodeRepo{}
	trust := newMemTrust()
	sender := &memSender{}
	cooldown := newMemCooldown(60 * time.Second)
	engine := &DefaultEngine{
		Repo:     repo,
		Trust:    trust,
		Sender:   sender,
		Cooldown: cooldown,
		TTL:      5 * time.Minute,
	}
	return engine, repo, trust, sender, cooldown
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	engine, repo, _, sender, _ := newTestEngine()

	result, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.Equal(t, []string{"+255700000001"}, sender.sent)

	code := repo.latestValue("acct-1")
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestIssueDeliveryFailureIsSoft(t *testing.T) {
	engine, repo, _, sender, _ := newTestEngine()
	sender.fail = true

	result, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.NotEmpty(t, result.Message)

	// The code is still stored and verifiable.
	code := repo.latestValue("acct-1")
	require.NotEmpty(t, code)
	assert.NoError(t, engine.Verify("acct-1", code, "fp-1"))
}

func TestIssueRejectsMissingInput(t *testing.T) {
	engine, _, _, _, _ := newTestEngine()

	_, err := engine.Issue("", "+255700000001")
	var validation poserr.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = engine.Issue("acct-1", "")
	assert.ErrorAs(t, err, &validation)
}

func TestVerifySuccessConsumesCodeAndTrustsDevice(t *testing.T) {
	engine, repo, trust, _, _ := newTestEngine()

	_, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)
	code := repo.latestValue("acct-1")

	require.NoError(t, engine.Verify("acct-1", code, "fp-1"))

	trusted, _ := trust.IsAccountDeviceVerified("acct-1", "fp-1")
	assert.True(t, trusted)

	// A second use of the same code fails: it has been consumed.
	err = engine.Verify("acct-1", code, "fp-1")
	assert.ErrorAs(t, err, &poserr.ExpiredOrUsedCodeError{})
}

func TestVerifyRejectsExpiredCode(t *testing.T) {
	engine, repo, _, _, _ := newTestEngine()

	_, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)
	code := repo.latestValue("acct-1")

	repo.expire("acct-1")

	err = engine.Verify("acct-1", code, "fp-1")
	assert.ErrorAs(t, err, &poserr.ExpiredOrUsedCodeError{})
}

func TestNewIssuanceInvalidatesOlderCodes(t *testing.T) {
	engine, repo, _, _, _ := newTestEngine()

	_, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)
	first := repo.latestValue("acct-1")

	// Force distinct issuance times so ordering is unambiguous.
	time.Sleep(5 * time.Millisecond)

	_, err = engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)
	second := repo.latestValue("acct-1")

	if first != second {
		// The stale code is rejected even though it never expired.
		err = engine.Verify("acct-1", first, "fp-1")
		assert.ErrorAs(t, err, &poserr.ExpiredOrUsedCodeError{})
	}
	assert.NoError(t, engine.Verify("acct-1", second, "fp-1"))
}

func TestVerifyRejectsMalformedCode(t *testing.T) {
	engine, _, _, _, _ := newTestEngine()

	var validation poserr.ValidationError
	assert.ErrorAs(t, engine.Verify("acct-1", "12345", "fp-1"), &validation)
	assert.ErrorAs(t, engine.Verify("acct-1", "12345a", "fp-1"), &validation)
	assert.ErrorAs(t, engine.Verify("acct-1", "1234567", "fp-1"), &validation)
}

func TestVerifyFailureMessageIsConstant(t *testing.T) {
	engine, repo, _, _, _ := newTestEngine()

	// No code at all vs. wrong code vs. expired code: identical error.
	errNone := engine.Verify("acct-1", "123456", "fp-1")

	_, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)
	code := repo.latestValue("acct-1")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	errWrong := engine.Verify("acct-1", wrong, "fp-1")

	repo.expire("acct-1")
	errExpired := engine.Verify("acct-1", code, "fp-1")

	assert.Equal(t, errNone.Error(), errWrong.Error())
	assert.Equal(t, errNone.Error(), errExpired.Error())
}

func TestResendEnforcesCooldown(t *testing.T) {
	engine, _, _, _, _ := newTestEngine()

	_, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)

	// Immediately inside the window.
	_, err = engine.Resend("acct-1", "+255700000001")
	var validation poserr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestResendAllowedAfterWindow(t *testing.T) {
	engine, _, _, _, cooldown := newTestEngine()
	cooldown.window = 10 * time.Millisecond

	_, err := engine.Issue("acct-1", "+255700000001")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	result, err := engine.Resend("acct-1", "+255700000001")
	require.NoError(t, err)
	assert.True(t, result.Sent)
}
