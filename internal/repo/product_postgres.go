package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/rogerio-castellano/product-catalog/internal/models"
)

const (
	productColumns  = `id, name, description, price, category, created_at, updated_at`
	uniqueViolation = "23505"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicatedValueUnique
	}
	return err
}

func (r *PostgresProductRepository) FindByID(ctx context.Context, id int) (models.Product, bool, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, errors.Wrapf(err, "find product %d", id)
	}
	return p, true, nil
}

func (r *PostgresProductRepository) FindByNameAndCategory(ctx context.Context, name, category string) (models.Product, bool, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 AND category = $2 LIMIT 1`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, name, category))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, errors.Wrap(err, "find product by name and category")
	}
	return p, true, nil
}

const searchCondition = ` WHERE (name ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\')`

func (r *PostgresProductRepository) SearchByNameOrDescription(ctx context.Context, query string, offset, limit int) ([]models.Product, error) {
	stmt := `SELECT ` + productColumns + ` FROM products` + searchCondition + ` ORDER BY id`
	args := []any{likePattern(query)}
	stmt, args = appendPaging(stmt, args, offset, limit)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return scanProducts(rows)
}

func (r *PostgresProductRepository) CountByNameOrDescription(ctx context.Context, query string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+searchCondition, likePattern(query)).Scan(&total)
	return total, errors.Wrap(err, "count search results")
}

func (r *PostgresProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresProductRepository) FindBy(ctx context.Context, pf ProductFilter) ([]models.Product, error) {
	conditions, args := filterConditions(pf)
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1` + conditions + ` ORDER BY ` + pf.orderClause()
	query, args = appendPaging(query, args, pf.offset(), pf.limit())

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "filter products")
	}
	return scanProducts(rows)
}

func (r *PostgresProductRepository) Count(ctx context.Context, pf ProductFilter) (int, error) {
	conditions, args := filterConditions(pf)
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE 1=1`+conditions, args...).Scan(&total)
	return total, errors.Wrap(err, "count products")
}

func (r *PostgresProductRepository) Save(ctx context.Context, p *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if p.ID == 0 {
		query := `INSERT INTO products (name, description, price, category) VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`
		err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.Price, p.Category).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		return mapWriteError(err)
	}

	query := `UPDATE products SET name = $1, description = $2, price = $3, category = $4, updated_at = NOW()
		WHERE id = $5 RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.Price, p.Category, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	return mapWriteError(err)
}

func (r *PostgresProductRepository) Remove(ctx context.Context, p models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, p.ID)
	if err != nil {
		return errors.Wrapf(err, "delete product %d", p.ID)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return r.db.PingContext(ctx)
}

func filterConditions(pf ProductFilter) (string, []any) {
	query := ""
	args := []any{}

	if pf.Name != nil {
		args = append(args, *pf.Name)
		query += fmt.Sprintf(" AND name = $%d", len(args))
	}
	if pf.Category != nil {
		args = append(args, *pf.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	return query, args
}

func appendPaging(query string, args []any, offset, limit int) (string, []any) {
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}
