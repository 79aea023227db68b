package repo

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productRecord is the GORM model of the products table.
type productRecord struct {
	ID          int             `gorm:"primaryKey"`
	Name        string          `gorm:"not null;size:255;uniqueIndex:idx_products_name_category"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Category    string          `gorm:"not null;size:255;uniqueIndex:idx_products_name_category;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRecord) TableName() string {
	return "products"
}

func toRecord(p models.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r productRecord) toModel() models.Product {
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.Round(2),
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toModels(records []productRecord) []models.Product {
	products := make([]models.Product, len(records))
	for i, rec := range records {
		products[i] = rec.toModel()
	}
	return products
}

// GormProductRepository stores products through GORM. It backs the sqlite
// storage driver.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// AutoMigrate creates or updates the products table and its indexes.
func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&productRecord{})
}

func (r *GormProductRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&productRecord{})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *GormProductRepository) first(ctx context.Context, query any, args ...any) (models.Product, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var rec productRecord
	err := r.table(ctx).Where(query, args...).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, errors.Wrap(err, "find product")
	}
	return rec.toModel(), true, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int) (models.Product, bool, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormProductRepository) FindByNameAndCategory(ctx context.Context, name, category string) (models.Product, bool, error) {
	return r.first(ctx, "name = ? AND category = ?", name, category)
}

// search folds both sides with unicode_lower, which db.OpenSQLite registers on
// the connection. Pattern and columns must agree on accented capitals.
func (r *GormProductRepository) search(ctx context.Context, query string) *gorm.DB {
	pattern := strings.ToLower(likePattern(query))
	return r.table(ctx).Where(
		`unicode_lower(name) LIKE ? ESCAPE '\' OR unicode_lower(COALESCE(description, '')) LIKE ? ESCAPE '\'`,
		pattern, pattern,
	)
}

func (r *GormProductRepository) SearchByNameOrDescription(ctx context.Context, query string, offset, limit int) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var records []productRecord
	err := paged(r.search(ctx, query).Order("id ASC"), offset, limit).Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return toModels(records), nil
}

func (r *GormProductRepository) CountByNameOrDescription(ctx context.Context, query string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int64
	err := r.search(ctx, query).Count(&total).Error
	return int(total), errors.Wrap(err, "count search results")
}

func (r *GormProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	categories := []string{}
	err := r.table(ctx).Distinct("category").Order("category").Pluck("category", &categories).Error
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (r *GormProductRepository) filtered(ctx context.Context, pf ProductFilter) *gorm.DB {
	tx := r.table(ctx)
	if pf.Name != nil {
		tx = tx.Where("name = ?", *pf.Name)
	}
	if pf.Category != nil {
		tx = tx.Where("category = ?", *pf.Category)
	}
	return tx
}

func (r *GormProductRepository) FindBy(ctx context.Context, pf ProductFilter) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var records []productRecord
	err := paged(r.filtered(ctx, pf).Order(pf.orderClause()), pf.offset(), pf.limit()).Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "filter products")
	}
	return toModels(records), nil
}

func (r *GormProductRepository) Count(ctx context.Context, pf ProductFilter) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int64
	err := r.filtered(ctx, pf).Count(&total).Error
	return int(total), errors.Wrap(err, "count products")
}

func (r *GormProductRepository) Save(ctx context.Context, p *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if p.ID == 0 {
		rec := toRecord(*p)
		if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicatedValueUnique
			}
			return errors.Wrap(err, "insert product")
		}
		*p = rec.toModel()
		return nil
	}

	res := r.table(ctx).Where("id = ?", p.ID).Updates(map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicatedValueUnique
		}
		return errors.Wrapf(res.Error, "update product %d", p.ID)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}

	var rec productRecord
	if err := r.table(ctx).Where("id = ?", p.ID).Take(&rec).Error; err != nil {
		return errors.Wrapf(err, "reload product %d", p.ID)
	}
	*p = rec.toModel()
	return nil
}

func (r *GormProductRepository) Remove(ctx context.Context, p models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&productRecord{}, p.ID)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete product %d", p.ID)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func paged(tx *gorm.DB, offset, limit int) *gorm.DB {
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	return tx
}
