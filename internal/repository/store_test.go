package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{
		Driver:     config.StoreSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "attendance.db"),
	}}

	stores, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer stores.Close()

	days, err := stores.Schedules.GetDayCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, days, 7)

	staff, err := stores.Employees.GetActive(context.Background(), "Todas")
	require.NoError(t, err)
	assert.Empty(t, staff)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mysql"}})
	assert.ErrorIs(t, err, config.ErrInvalidStoreDriver)
}
