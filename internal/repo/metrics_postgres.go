package repo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type PostgresMetricsRepository struct {
	db *sql.DB
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) GetDashboardMetrics(ctx context.Context) (Metrics, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	m := Metrics{ProductsPerCategory: []CategoryCount{}}

	var avg decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT category), AVG(price) FROM products`).
		Scan(&m.TotalProducts, &m.TotalCategories, &avg)
	if err != nil {
		return m, errors.Wrap(err, "count products")
	}
	if avg.Valid {
		m.AveragePrice = avg.Decimal.Round(2).InexactFloat64()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS cnt
		FROM products
		GROUP BY category
		ORDER BY cnt DESC, category
	`)
	if err != nil {
		return m, errors.Wrap(err, "count products per category")
	}
	defer rows.Close()
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return m, err
		}
		m.ProductsPerCategory = append(m.ProductsPerCategory, c)
	}
	if err := rows.Err(); err != nil {
		return m, err
	}

	var price decimal.Decimal
	err = r.db.QueryRowContext(ctx, `SELECT name, price FROM products ORDER BY price DESC, id LIMIT 1`).
		Scan(&m.MostExpensiveProduct.Name, &price)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return m, errors.Wrap(err, "find most expensive product")
	}
	m.MostExpensiveProduct.Price = price.InexactFloat64()

	return m, nil
}
