package cli

import (
	"context"
	"testing"

	"github.com/rogerio-castellano/product-catalog/internal/config"
	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_Memory(t *testing.T) {
	store, err := openStorage(config.Config{StorageDriver: config.DriverMemory})
	require.NoError(t, err)
	defer store.close()

	ctx := context.Background()
	price := decimal.NewFromInt(10)
	p, err := models.NewProduct(models.ProductInput{Name: "A", Category: "B", Price: &price})
	require.NoError(t, err)
	require.NoError(t, store.products.Save(ctx, &p))

	m, err := store.metrics.GetDashboardMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalProducts)
}

func TestOpenStorage_SQLite(t *testing.T) {
	store, err := openStorage(config.Config{StorageDriver: config.DriverSQLite, SQLitePath: ":memory:", AutoMigrate: true})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer store.close()
	assert.NoError(t, store.products.Ping(context.Background()))
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	_, err := openStorage(config.Config{StorageDriver: "mongo"})
	assert.Error(t, err)
}

func TestMigrateCommandArgs(t *testing.T) {
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{}))
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{"sideways"}))
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"up"}))
}
