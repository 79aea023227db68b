package repo

import (
	"context"
	"errors"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

// queryTimeout bounds every single storage round trip.
const queryTimeout = 3 * time.Second

var (
	// ErrProductNotFound is returned when a write targets a product that no longer exists.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicatedValueUnique is returned when storage rejects a second (name, category) pair.
	ErrDuplicatedValueUnique = errors.New("duplicated value for unique constraint")
)

// ProductRepository is the persistence gateway for products. Lookups that find
// nothing report it through a boolean or an empty slice, never through an error.
type ProductRepository interface {
	FindByID(ctx context.Context, id int) (models.Product, bool, error)
	FindByNameAndCategory(ctx context.Context, name, category string) (models.Product, bool, error)
	SearchByNameOrDescription(ctx context.Context, query string, offset, limit int) ([]models.Product, error)
	CountByNameOrDescription(ctx context.Context, query string) (int, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	FindBy(ctx context.Context, pf ProductFilter) ([]models.Product, error)
	Count(ctx context.Context, pf ProductFilter) (int, error)
	// Save inserts a product with a zero ID and assigns it one; otherwise it
	// updates the stored row.
	Save(ctx context.Context, product *models.Product) error
	Remove(ctx context.Context, product models.Product) error
	Ping(ctx context.Context) error
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}
