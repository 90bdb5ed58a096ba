package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sessionRepo "tillpoint/database/repository/session"
	"tillpoint/models"
	"tillpoint/services/poserr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSessionRepo mimics the Mongo repository, including the partial unique
// index on open sessions per cashier. The mutex makes every operation
// linearizable so concurrent inserts resolve to exactly one winner.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.POSSession
	counters map[string]int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		sessions: make(map[string]*models.POSSession),
		counters: make(map[string]int),
	}
}

func (r *memSessionRepo) Insert(session *models.POSSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.CashierAccountID == session.CashierAccountID && s.Status == models.SessionStatusOpen {
			return sessionRepo.ErrOpenSessionExists
		}
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memSessionRepo) GetByID(id string) (*models.POSSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) GetOpenByCashier(cashierAccountID string) (*models.POSSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.CashierAccountID == cashierAccountID && s.Status == models.SessionStatusOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) SetStartingCash(id string, amount float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != models.SessionStatusOpen {
		return false, nil
	}
	s.StartingCash = amount
	return true, nil
}

func (r *memSessionRepo) Close(id, closedBy string, endingCash *float64, notes string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != models.SessionStatusOpen {
		return false, nil
	}
	now := time.Now()
	s.Status = models.SessionStatusClosed
	s.ClosedAt = &now
	s.ClosedBy = closedBy
	s.EndingCash = endingCash
	if notes != "" {
		s.Notes = notes
	}
	return true, nil
}

func (r *memSessionRepo) IncrementTotals(id string, delta models.TotalsDelta) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != models.SessionStatusOpen {
		return false, nil
	}
	s.Totals.Sales += delta.Sales
	s.Totals.TransactionCount += delta.TransactionCount
	s.Totals.Discounts += delta.Discounts
	s.Totals.Returns += delta.Returns
	s.Totals.Taxes += delta.Taxes
	return true, nil
}

func (r *memSessionRepo) NextSessionNumber(branchID, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := branchID + ":" + day
	r.counters[key]++
	return r.counters[key], nil
}

func (r *memSessionRepo) FlagOverdue(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var flagged int64
	for _, s := range r.sessions {
		if s.Status == models.SessionStatusOpen && s.OpenedAt.Before(cutoff) && !s.Overdue {
			s.Overdue = true
			flagged++
		}
	}
	return flagged, nil
}

// fixedAllocator always yields the same terminal.
type fixedAllocator struct {
	terminalID string
}

func (a *fixedAllocator) Allocate(branchID, cashierAccountID string) (string, error) {
	return a.terminalID, nil
}

// fixedBranchSettings serves one branch code and no settings.
type fixedBranchSettings struct {
	code string
}

func (s *fixedBranchSettings) GetSetting(branchID, key string) (string, error) { return "", nil }

func (s *fixedBranchSettings) GetBool(branchID, key string) (bool, error) { return false, nil }

func (s *fixedBranchSettings) RoleRequiresMFA(branchID, role string) (bool, error) {
	return false, nil
}

func (s *fixedBranchSettings) GetBranchCode(branchID string) (string, error) { return s.code, nil }

func newTestLedger() (*DefaultLedger, *memSessionRepo) {
	repo := newMemSessionRepo()
	ledger := &DefaultLedger{
		Repo:      repo,
		Allocator: &fixedAllocator{terminalID: "t-1"},
		Branches:  &fixedBranchSettings{code: "MAIN"},
	}
	return ledger, repo
}

func TestCreateSessionAssignsNumberAndTerminal(t *testing.T) {
	ledger, _ := newTestLedger()

	sess, err := ledger.CreateSession("acct-1", "b-1", "t-1", 500, "")
	require.NoError(t, err)

	day := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("MAIN-%s-0001", day), sess.SessionNumber)
	assert.Equal(t, "t-1", sess.TerminalID)
	assert.Equal(t, models.SessionStatusOpen, sess.Status)
	assert.Equal(t, 500.0, sess.StartingCash)
	assert.Equal(t, models.SessionTotals{}, sess.Totals)
}

func TestSessionNumbersAreSequentialPerBranchDay(t *testing.T) {
	ledger, _ := newTestLedger()
	day := time.Now().Format("20060102")

	for i := 1; i <= 3; i++ {
		cashier := fmt.Sprintf("acct-%d", i)
		sess, err := ledger.CreateSession(cashier, "b-1", "t-1", 100, "")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("MAIN-%s-%04d", day, i), sess.SessionNumber)
	}
}

func TestConcurrentCreateYieldsSingleWinner(t *testing.T) {
	ledger, repo := newTestLedger()

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var created []*models.POSSession
	var conflicts []poserr.ConcurrentSessionConflictError
	var unexpected []error

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := ledger.CreateSession("acct-1", "b-1", "t-1", 200, "")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var conflict poserr.ConcurrentSessionConflictError
				if errors.As(err, &conflict) {
					conflicts = append(conflicts, conflict)
				} else {
					unexpected = append(unexpected, err)
				}
				return
			}
			created = append(created, sess)
		}()
	}
	wg.Wait()

	require.Empty(t, unexpected)
	require.Len(t, created, 1)
	require.Len(t, conflicts, attempts-1)

	// Every loser was handed the winning session.
	for _, c := range conflicts {
		require.NotNil(t, c.Existing)
		assert.Equal(t, created[0].ID, c.Existing.ID)
	}

	open, err := repo.GetOpenByCashier("acct-1")
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, open.ID)
}

func TestCanStartNewSessionReportsExistingOpen(t *testing.T) {
	ledger, _ := newTestLedger()

	sess, err := ledger.CreateSession("acct-1", "b-1", "t-1", 300, "")
	require.NoError(t, err)

	check, err := ledger.CanStartNewSession("acct-1", "b-1")
	require.NoError(t, err)
	assert.False(t, check.CanStart)
	require.NotNil(t, check.Existing)
	assert.Equal(t, sess.ID, check.Existing.ID)
}

func TestCanStartNewSessionBlockedWithoutTerminal(t *testing.T) {
	ledger, _ := newTestLedger()
	ledger.Allocator = &fixedAllocator{terminalID: ""}

	check, err := ledger.CanStartNewSession("acct-1", "b-1")
	require.NoError(t, err)
	assert.False(t, check.CanStart)
	assert.Nil(t, check.Existing)
	assert.NotEmpty(t, check.Reason)
}

func TestSetStartingCashRequiresPositiveAmount(t *testing.T) {
	ledger, _ := newTestLedger()

	sess, err := ledger.CreateSession("acct-1", "b-1", "t-1", 0, "")
	require.NoError(t, err)

	_, err = ledger.SetStartingCash(sess.ID, 0)
	var validation poserr.ValidationError
	assert.ErrorAs(t, err, &validation)

	updated, err := ledger.SetStartingCash(sess.ID, 750)
	require.NoError(t, err)
	assert.Equal(t, 750.0, updated.StartingCash)
	assert.True(t, updated.HasStartingCash())
}

func TestCloseSessionRecordsClosureOnce(t *testing.T) {
	ledger, _ := newTestLedger()

	sess, err := ledger.CreateSession("acct-1", "b-1", "t-1", 400, "")
	require.NoError(t, err)

	ending := 912.50
	closed, err := ledger.CloseSession(sess.ID, "acct-1", &ending, "end of shift")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	require.NotNil(t, closed.EndingCash)
	assert.Equal(t, ending, *closed.EndingCash)

	// A second close hits a session that is no longer open.
	_, err = ledger.CloseSession(sess.ID, "acct-1", &ending, "")
	var invalid poserr.InvalidSessionStateError
	assert.ErrorAs(t, err, &invalid)
}

func TestUpdateTotalsOnlyWhileOpen(t *testing.T) {
	ledger, repo := newTestLedger()

	sess, err := ledger.CreateSession("acct-1", "b-1", "t-1", 400, "")
	require.NoError(t, err)

	delta := models.TotalsDelta{Sales: 120.5, TransactionCount: 3, Taxes: 10.5}
	require.NoError(t, ledger.UpdateTotals(sess.ID, delta))
	require.NoError(t, ledger.UpdateTotals(sess.ID, models.TotalsDelta{Sales: 9.5, TransactionCount: 1}))

	current, err := repo.GetByID(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 130.0, current.Totals.Sales)
	assert.Equal(t, 4, current.Totals.TransactionCount)
	assert.Equal(t, 10.5, current.Totals.Taxes)

	_, err = ledger.CloseSession(sess.ID, "acct-1", nil, "")
	require.NoError(t, err)

	err = ledger.UpdateTotals(sess.ID, delta)
	var invalid poserr.InvalidSessionStateError
	assert.ErrorAs(t, err, &invalid)
}

func TestCreateSessionRejectsNegativeStartingCash(t *testing.T) {
	ledger, _ := newTestLedger()

	_, err := ledger.CreateSession("acct-1", "b-1", "t-1", -5, "")
	var validation poserr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestFlagOverdueMarksStaleOpenSessions(t *testing.T) {
	_, repo := newTestLedger()

	stale := &models.POSSession{
		ID:               "s-stale",
		CashierAccountID: "acct-1",
		BranchID:         "b-1",
		Status:           models.SessionStatusOpen,
		OpenedAt:         time.Now().Add(-30 * time.Hour),
	}
	fresh := &models.POSSession{
		ID:               "s-fresh",
		CashierAccountID: "acct-2",
		BranchID:         "b-1",
		Status:           models.SessionStatusOpen,
		OpenedAt:         time.Now(),
	}
	require.NoError(t, repo.Insert(stale))
	require.NoError(t, repo.Insert(fresh))

	flagged, err := repo.FlagOverdue(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), flagged)

	got, _ := repo.GetByID("s-stale")
	assert.True(t, got.Overdue)
	got, _ = repo.GetByID("s-fresh")
	assert.False(t, got.Overdue)
}
