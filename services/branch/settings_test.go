package branch

import (
	"testing"

	"tillpoint/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBranchRepo struct {
	branches map[string]*models.Branch
	settings map[string]string
	reads    int
}

func newMemBranchRepo() *memBranchRepo {
	return &memBranchRepo{
		branches: make(map[string]*models.Branch),
		settings: make(map[string]string),
	}
}

func (r *memBranchRepo) GetByID(id string) (*models.Branch, error) {
	return r.branches[id], nil
}

func (r *memBranchRepo) GetSetting(branchID, key string) (string, error) {
	r.reads++
	return r.settings[branchID+":"+key], nil
}

func (r *memBranchRepo) PutSetting(branchID, key, value string) error {
	r.settings[branchID+":"+key] = value
	return nil
}

func newReader(repo *memBranchRepo) *DefaultSettingsReader {
	// No cache: every read goes to the repository.
	return &DefaultSettingsReader{Repo: repo}
}

func TestGetBoolInterpretsToggleValues(t *testing.T) {
	repo := newMemBranchRepo()
	reader := newReader(repo)

	cases := map[string]bool{
		"true": true, "TRUE": true, "1": true, "yes": true, "on": true,
		"false": false, "0": false, "off": false, "": false, "banana": false,
	}
	for value, want := range cases {
		require.NoError(t, repo.PutSetting("b-1", models.SettingAttendanceDeviceForPOS, value))
		got, err := reader.GetBool("b-1", models.SettingAttendanceDeviceForPOS)
		require.NoError(t, err)
		assert.Equal(t, want, got, "value %q", value)
	}
}

func TestRoleRequiresMFAMatchesCommaList(t *testing.T) {
	repo := newMemBranchRepo()
	reader := newReader(repo)
	require.NoError(t, repo.PutSetting("b-1", models.SettingMFARequiredRoles, "cashier, Manager"))

	got, err := reader.RoleRequiresMFA("b-1", models.RoleCashier)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = reader.RoleRequiresMFA("b-1", models.RoleManager)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = reader.RoleRequiresMFA("b-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, got)

	// Unset list requires nothing.
	got, err = reader.RoleRequiresMFA("b-2", models.RoleCashier)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestGetBranchCodeFallsBackToID(t *testing.T) {
	repo := newMemBranchRepo()
	repo.branches["b-1"] = &models.Branch{ID: "b-1", Name: "Main Street", Code: "MAIN"}
	reader := newReader(repo)

	code, err := reader.GetBranchCode("b-1")
	require.NoError(t, err)
	assert.Equal(t, "MAIN", code)

	code, err = reader.GetBranchCode("b2")
	require.NoError(t, err)
	assert.Equal(t, "B2", code)
}
