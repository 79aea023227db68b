package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
	nextID   int
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: []models.Product{},
		nextID:   1,
	}
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Name != nil && p.Name != *pf.Name {
		return false
	}
	if pf.Category != nil && p.Category != *pf.Category {
		return false
	}
	return true
}

func matchesSearch(p models.Product, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), q)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func page(products []models.Product, offset, limit int) []models.Product {
	start := clamp(offset, 0, len(products))
	end := len(products)
	if limit > 0 {
		end = clamp(start+limit, start, len(products))
	}
	out := make([]models.Product, end-start)
	copy(out, products[start:end])
	return out
}

// FindByID retrieves a product by its ID.
func (r *InMemoryProductRepository) FindByID(_ context.Context, id int) (models.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return models.Product{}, false, nil
}

// FindByNameAndCategory retrieves the product holding the exact (name, category) pair.
func (r *InMemoryProductRepository) FindByNameAndCategory(_ context.Context, name, category string) (models.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Name == name && p.Category == category {
			return p, true, nil
		}
	}
	return models.Product{}, false, nil
}

func (r *InMemoryProductRepository) searchLocked(query string) []models.Product {
	var matched []models.Product
	for _, p := range r.products {
		if matchesSearch(p, query) {
			matched = append(matched, p)
		}
	}
	return matched
}

// SearchByNameOrDescription pages through products whose name or description contains query.
func (r *InMemoryProductRepository) SearchByNameOrDescription(_ context.Context, query string, offset, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return page(r.searchLocked(query), offset, limit), nil
}

// CountByNameOrDescription counts the products SearchByNameOrDescription can return.
func (r *InMemoryProductRepository) CountByNameOrDescription(_ context.Context, query string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.searchLocked(query)), nil
}

// DistinctCategories lists each category once, sorted.
func (r *InMemoryProductRepository) DistinctCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range r.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// FindBy filters, sorts and pages products.
func (r *InMemoryProductRepository) FindBy(_ context.Context, pf ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := []models.Product{}
	for _, p := range r.products {
		if matchesFilter(p, pf) {
			filtered = append(filtered, p)
		}
	}
	sortProducts(filtered, pf)

	return page(filtered, pf.offset(), pf.limit()), nil
}

// Count counts products matching the filter, ignoring paging.
func (r *InMemoryProductRepository) Count(_ context.Context, pf ProductFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, p := range r.products {
		if matchesFilter(p, pf) {
			total++
		}
	}
	return total, nil
}

// Save inserts or updates a product, enforcing the (name, category) uniqueness.
func (r *InMemoryProductRepository) Save(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.ID != product.ID && p.Name == product.Name && p.Category == product.Category {
			return ErrDuplicatedValueUnique
		}
	}

	now := time.Now().UTC()
	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
		product.CreatedAt = now
		product.UpdatedAt = now
		r.products = append(r.products, *product)
		return nil
	}

	for i, p := range r.products {
		if p.ID == product.ID {
			product.CreatedAt = p.CreatedAt
			product.UpdatedAt = now
			r.products[i] = *product
			return nil
		}
	}
	return ErrProductNotFound
}

// Remove deletes a product from the repository by its ID.
func (r *InMemoryProductRepository) Remove(_ context.Context, product models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == product.ID {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return ErrProductNotFound
}

// Ping always succeeds.
func (r *InMemoryProductRepository) Ping(context.Context) error {
	return nil
}

// Clear drops every product and restarts the id sequence.
func (r *InMemoryProductRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = []models.Product{}
	r.nextID = 1
}

func sortProducts(products []models.Product, pf ProductFilter) {
	var less func(a, b models.Product) bool
	switch pf.OrderBy {
	case "name":
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	case "category":
		less = func(a, b models.Product) bool { return a.Category < b.Category }
	case "created_at":
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		less = func(a, b models.Product) bool { return a.ID < b.ID }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if pf.Desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}
