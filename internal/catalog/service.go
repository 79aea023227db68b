// Package catalog holds the product business rules: field validation and the
// uniqueness of the (name, category) pair.
package catalog

import (
	"context"
	"errors"

	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateProduct is returned when another product already holds the same
// name and category.
var ErrDuplicateProduct = errors.New("duplicate product: name and category already in use")

// CategoryCache stores the distinct category list between writes.
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]string, bool, error)
	SetCategories(ctx context.Context, categories []string) error
	InvalidateCategories(ctx context.Context) error
}

type Service struct {
	repo  repo.ProductRepository
	cache CategoryCache
}

type Option func(*Service)

// WithCategoryCache enables read-through caching of Categories.
func WithCategoryCache(c CategoryCache) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(r repo.ProductRepository, opts ...Option) *Service {
	s := &Service{repo: r}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, in models.ProductInput) (models.Product, error) {
	p, err := models.NewProduct(in)
	if err != nil {
		return models.Product{}, err
	}

	_, found, err := s.repo.FindByNameAndCategory(ctx, p.Name, p.Category)
	if err != nil {
		return models.Product{}, err
	}
	if found {
		return models.Product{}, ErrDuplicateProduct
	}

	if err := s.repo.Save(ctx, &p); err != nil {
		return models.Product{}, translate(err)
	}
	s.invalidate(ctx)
	return p, nil
}

// Update merges patch into product. Fields absent from the patch keep their values.
func (s *Service) Update(ctx context.Context, product models.Product, patch models.ProductPatch) (models.Product, error) {
	updated, err := product.Apply(patch)
	if err != nil {
		return models.Product{}, err
	}

	match, found, err := s.repo.FindByNameAndCategory(ctx, updated.Name, updated.Category)
	if err != nil {
		return models.Product{}, err
	}
	if found && match.ID != product.ID {
		return models.Product{}, ErrDuplicateProduct
	}

	if err := s.repo.Save(ctx, &updated); err != nil {
		return models.Product{}, translate(err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id int) (models.Product, bool, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, product models.Product) error {
	if err := s.repo.Remove(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// List returns one page of products, in id order, and the total product count.
// page and limit are used as given: offset = (page-1)*limit.
func (s *Service) List(ctx context.Context, page, limit int) ([]models.Product, int, error) {
	offset := (page - 1) * limit
	filter := repo.ProductFilter{Offset: &offset, Limit: &limit}

	var products []models.Product
	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.repo.FindBy(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, repo.ProductFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search pages through products whose name or description contains q.
func (s *Service) Search(ctx context.Context, q string, page, limit int) ([]models.Product, int, error) {
	offset := (page - 1) * limit

	var products []models.Product
	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.repo.SearchByNameOrDescription(gctx, q, offset, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountByNameOrDescription(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		categories, ok, err := s.cache.GetCategories(ctx)
		if err != nil {
			log.WithError(err).Warn("category cache read failed")
		} else if ok {
			return categories, nil
		}
	}

	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			log.WithError(err).Warn("category cache write failed")
		}
	}
	return categories, nil
}

// All returns every product in id order.
func (s *Service) All(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindBy(ctx, repo.ProductFilter{})
}

func (s *Service) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.repo.FindBy(ctx, repo.ProductFilter{Category: &category})
}

func (s *Service) FindByNameAndCategory(ctx context.Context, name, category string) (models.Product, bool, error) {
	return s.repo.FindByNameAndCategory(ctx, name, category)
}

// Ping checks the storage behind the service.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		log.WithError(err).Warn("category cache invalidation failed")
	}
}

func translate(err error) error {
	if errors.Is(err, repo.ErrDuplicatedValueUnique) {
		return ErrDuplicateProduct
	}
	return err
}
