package repo

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// GatewayMetricsRepository computes the dashboard by walking the product gateway.
// It serves the memory and sqlite storage drivers.
type GatewayMetricsRepository struct {
	productRepo ProductRepository
}

func NewGatewayMetricsRepository(productRepo ProductRepository) *GatewayMetricsRepository {
	return &GatewayMetricsRepository{productRepo: productRepo}
}

// GetDashboardMetrics implements MetricsRepository.
func (g *GatewayMetricsRepository) GetDashboardMetrics(ctx context.Context) (Metrics, error) {
	m := Metrics{ProductsPerCategory: []CategoryCount{}}

	products, err := g.productRepo.FindBy(ctx, ProductFilter{})
	if err != nil {
		return m, err
	}
	m.TotalProducts = len(products)
	if len(products) == 0 {
		return m, nil
	}

	perCategory := map[string]int{}
	sum := decimal.Zero
	for _, p := range products {
		perCategory[p.Category]++
		sum = sum.Add(p.Price)
		if p.Price.GreaterThan(decimal.NewFromFloat(m.MostExpensiveProduct.Price)) || m.MostExpensiveProduct.Name == "" {
			m.MostExpensiveProduct = MostExpensiveProduct{Name: p.Name, Price: p.Price.InexactFloat64()}
		}
	}

	m.TotalCategories = len(perCategory)
	m.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(products)))).Round(2).InexactFloat64()

	for category, count := range perCategory {
		m.ProductsPerCategory = append(m.ProductsPerCategory, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(m.ProductsPerCategory, func(i, j int) bool {
		a, b := m.ProductsPerCategory[i], m.ProductsPerCategory[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	return m, nil
}
