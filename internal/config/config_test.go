package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/service/reconcile"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FRAPPE_BASE_URL", "https://erp.example.com")
	t.Setenv("FRAPPE_API_KEY", "key")
	t.Setenv("FRAPPE_API_SECRET", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "America/Mexico_City", cfg.App.Timezone)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, EmployeesFromFrappe, cfg.Store.EmployeeSource)
	assert.Equal(t, 100, cfg.Frappe.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Frappe.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Job.Interval)
	assert.Equal(t, 1, cfg.Job.LookbackDays)
	assert.False(t, cfg.Job.Enabled)
	assert.Equal(t, checkin.AllBranches, cfg.Job.Branch)

	policy, err := cfg.ReconcilePolicy()
	require.NoError(t, err)
	def := reconcile.DefaultPolicy()
	assert.Equal(t, def.TardyTolerance, policy.TardyTolerance)
	assert.Equal(t, def.UnexcusedThreshold, policy.UnexcusedThreshold)
	assert.Equal(t, def.OvernightGrace, policy.OvernightGrace)
	assert.Equal(t, reconcile.BreakComputed, policy.BreakMode)
	assert.False(t, policy.ForgiveUnexcusedLateness)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TARDY_TOLERANCE_MINUTES", "10")
	t.Setenv("BREAK_MODE", "FIXED")
	t.Setenv("FIXED_BREAK_MINUTES", "30")
	t.Setenv("FORGIVE_UNEXCUSED_LATENESS", "true")
	t.Setenv("LEAVE_NO_ADJUST_TYPES", "Permiso Sindical, Comisión")
	t.Setenv("BRANCH_TERMINAL_PATTERNS", "Centro=centro|ctr")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	policy, err := cfg.ReconcilePolicy()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, policy.TardyTolerance)
	assert.Equal(t, reconcile.BreakFixed, policy.BreakMode)
	assert.Equal(t, 30*time.Minute, policy.FixedBreak)
	assert.True(t, policy.ForgiveUnexcusedLateness)
	assert.False(t, policy.Leave.Adjusts("permiso sindical"))

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.App.CORSAllowedOrigins)

	branches, err := cfg.Branches()
	require.NoError(t, err)
	assert.Equal(t, []string{"Centro"}, branches.Branches())
	assert.Equal(t, "Centro", branches.Resolve("CTR-01"))
}

func TestFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"missing credentials", map[string]string{"FRAPPE_API_SECRET": ""}, ErrMissingFrappeCredentials},
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": ""}, ErrMissingJWTSecret},
		{"postgres without password", map[string]string{"STORE_DRIVER": "postgres"}, ErrMissingDBPassword},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mysql"}, ErrInvalidStoreDriver},
		{"unknown employee source", map[string]string{"EMPLOYEE_SOURCE": "ldap"}, ErrInvalidEmployeeSource},
		{"bad timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}, nil},
		{"threshold below tolerance", map[string]string{"UNEXCUSED_THRESHOLD_MINUTES": "5"}, nil},
		{"bad break mode", map[string]string{"BREAK_MODE": "lunch"}, nil},
		{"bad branch patterns", map[string]string{"BRANCH_TERMINAL_PATTERNS": "Villas"}, checkin.ErrInvalidBranchPattern},
		{"bad integer", map[string]string{"APP_PORT": "http"}, nil},
		{"bad duration", map[string]string{"FRAPPE_TIMEOUT": "soon"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestFromEnv_MissingFrappeKey(t *testing.T) {
	setRequired(t)
	t.Setenv("FRAPPE_API_KEY", "")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingFrappeCredentials)
}

func TestServerLocationFallsBack(t *testing.T) {
	setRequired(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	loc, err := cfg.ServerLocation()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())

	cfg.Frappe.ServerTimezone = "UTC"
	loc, err = cfg.ServerLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{User: "app", Password: "pw", Host: "db", Port: 5433, Name: "att", SSLMode: "require"}}
	assert.Equal(t, "postgres://app:pw@db:5433/att?sslmode=require", cfg.DatabaseURL())
}

func TestLoadCLI_WithoutCredentials(t *testing.T) {
	t.Setenv("FRAPPE_BASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")

	cfg, err := LoadCLI()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", cfg.App.Timezone)

	t.Setenv("BREAK_MODE", "lunch")
	_, err = LoadCLI()
	assert.Error(t, err)
}
