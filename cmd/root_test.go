package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
)

func testRuntime(t *testing.T) *runtime {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.General.Timezone = "UTC"
	return &runtime{cfg: cfg, engine: pipeline.NewEngine(pipeline.Sources{}, cfg)}
}

// resetFlags restores the persistent flags after a test mutates them.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagDays, flagFrom, flagTo = 0, "", ""
		flagRole = string(model.RoleSuperAdmin)
		flagUser, flagUniversity, flagModule, flagCourse = 0, 0, 0, 0
		flagLimit = 0
	})
}

func TestRequestDefaultsToConfiguredWindow(t *testing.T) {
	resetFlags(t)
	r := testRuntime(t)

	before := time.Now()
	req, err := r.request()
	require.NoError(t, err)
	require.NotNil(t, req.Start)
	assert.Nil(t, req.End)
	assert.WithinDuration(t, before.AddDate(0, 0, -30), *req.Start, 2*time.Minute)
	assert.Equal(t, model.RoleSuperAdmin, req.Caller.Role)
	assert.Equal(t, "Last 30d", r.windowLabel(req))
}

func TestRequestDaysFlagWins(t *testing.T) {
	resetFlags(t)
	r := testRuntime(t)
	flagDays = 7

	assert.Equal(t, 7, r.windowDays())
	req, err := r.request()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), *req.Start, 2*time.Minute)
}

func TestRequestExplicitBounds(t *testing.T) {
	resetFlags(t)
	r := testRuntime(t)
	flagFrom, flagTo = "2024-03-01", "2024-03-10"
	flagRole, flagUser, flagModule, flagLimit = "professor", 42, 7, 5

	req, err := r.request()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *req.Start)
	// A date upper bound covers the whole day.
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), *req.End)
	assert.Equal(t, model.Caller{UserID: 42, Role: model.RoleProfessor}, req.Caller)
	assert.Equal(t, int64(7), req.Filter.ModuleID)
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, "2024-03-01 → 2024-03-10", r.windowLabel(req))
}

func TestRequestRejectsBadInput(t *testing.T) {
	tests := []struct {
		name             string
		from, to, role   string
		wantErrSubstring string
	}{
		{name: "unknown role", role: "student", wantErrSubstring: "unknown role"},
		{name: "bad from", from: "yesterday", wantErrSubstring: "invalid --from"},
		{name: "bad to", to: "03/10/2024", wantErrSubstring: "invalid --to"},
		{name: "inverted", from: "2024-03-10", to: "2024-03-01", wantErrSubstring: "before --to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			r := testRuntime(t)
			flagFrom, flagTo = tt.from, tt.to
			if tt.role != "" {
				flagRole = tt.role
			}
			_, err := r.request()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrSubstring)
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/edu", maskDSN("postgres://app:secret@db:5432/edu"))
	assert.Equal(t, "/var/lib/edumetrics/events.db", maskDSN("/var/lib/edumetrics/events.db"))
	assert.Equal(t, "redis://cache:6379/0", maskDSN("redis://cache:6379/0"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "abcdefgh...wxyz", maskAPIKey("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "abcd...", maskAPIKey("abcdefg"))
	assert.Equal(t, "****", maskAPIKey("abc"))
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", ":9000", "--detach=true"})
	assert.Equal(t, []string{"daemon", "--addr", ":9000"}, got)
}
