package repo

import "context"

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type MostExpensiveProduct struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Metrics struct {
	TotalProducts        int                  `json:"total_products"`
	TotalCategories      int                  `json:"total_categories"`
	AveragePrice         float64              `json:"average_price"`
	ProductsPerCategory  []CategoryCount      `json:"products_per_category"`
	MostExpensiveProduct MostExpensiveProduct `json:"most_expensive_product"`
}

type MetricsRepository interface {
	GetDashboardMetrics(ctx context.Context) (Metrics, error)
}
