package cli

import (
	"fmt"

	"github.com/rogerio-castellano/product-catalog/internal/config"
	"github.com/rogerio-castellano/product-catalog/internal/db"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	log "github.com/sirupsen/logrus"
)

type storage struct {
	products repo.ProductRepository
	metrics  repo.MetricsRepository
	close    func() error
}

func openStorage(cfg config.Config) (storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		if cfg.AutoMigrate {
			if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
				return storage{}, err
			}
		}
		conn, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return storage{}, err
		}
		return storage{
			products: repo.NewPostgresProductRepository(conn),
			metrics:  repo.NewPostgresMetricsRepository(conn),
			close:    conn.Close,
		}, nil

	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return storage{}, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return storage{}, err
		}
		products := repo.NewGormProductRepository(gdb)
		if cfg.AutoMigrate {
			if err := products.AutoMigrate(); err != nil {
				sqlDB.Close()
				return storage{}, fmt.Errorf("sqlite auto-migrate: %w", err)
			}
		}
		return storage{
			products: products,
			metrics:  repo.NewGatewayMetricsRepository(products),
			close:    sqlDB.Close,
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		products := repo.NewInMemoryProductRepository()
		return storage{
			products: products,
			metrics:  repo.NewGatewayMetricsRepository(products),
			close:    func() error { return nil },
		}, nil
	}
	return storage{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
