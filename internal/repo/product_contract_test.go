package repo_test

import (
	"context"
	"testing"

	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) repo.ProductRepository

func strPtr(s string) *string { return &s }
func intPtr(i int) *int        { return &i }

func newProduct(t *testing.T, name, category, price string, description *string) models.Product {
	t.Helper()
	d := decimal.RequireFromString(price)
	p, err := models.NewProduct(models.ProductInput{Name: name, Category: category, Price: &d, Description: description})
	require.NoError(t, err)
	return p
}

func save(t *testing.T, r repo.ProductRepository, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, r.Save(context.Background(), &p))
	return p
}

// runProductRepositoryContract exercises the behaviour every gateway must share.
func runProductRepositoryContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("Save assigns ids and FindByID reads them back", func(t *testing.T) {
		r := newStore(t)
		p := save(t, r, newProduct(t, "Notebook", "Eletrônicos", "3500.5", strPtr("16GB RAM")))

		assert.NotZero(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())

		got, found, err := r.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Notebook", got.Name)
		assert.Equal(t, "3500.50", got.PriceString())
		assert.Equal(t, "16GB RAM", got.DescriptionOrEmpty())
	})

	t.Run("FindByID reports absence without error", func(t *testing.T) {
		r := newStore(t)
		_, found, err := r.FindByID(ctx, 999)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("FindByNameAndCategory is exact", func(t *testing.T) {
		r := newStore(t)
		save(t, r, newProduct(t, "Caneta", "Papelaria", "2", nil))

		_, found, err := r.FindByNameAndCategory(ctx, "Caneta", "Papelaria")
		require.NoError(t, err)
		assert.True(t, found)

		_, found, err = r.FindByNameAndCategory(ctx, "Caneta", "Escritório")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Duplicate pair is rejected", func(t *testing.T) {
		r := newStore(t)
		save(t, r, newProduct(t, "Caneta", "Papelaria", "2", nil))

		dup := newProduct(t, "Caneta", "Papelaria", "3", nil)
		err := r.Save(ctx, &dup)
		assert.ErrorIs(t, err, repo.ErrDuplicatedValueUnique)

		other := newProduct(t, "Caneta", "Escritório", "3", nil)
		assert.NoError(t, r.Save(ctx, &other))
	})

	t.Run("Save updates existing rows", func(t *testing.T) {
		r := newStore(t)
		p := save(t, r, newProduct(t, "Cadeira", "Móveis", "300", strPtr("Madeira")))

		p.Price = decimal.RequireFromString("350.25")
		p.Description = nil
		require.NoError(t, r.Save(ctx, &p))

		got, found, err := r.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "350.25", got.PriceString())
		assert.Nil(t, got.Description)
	})

	t.Run("Save on a vanished row", func(t *testing.T) {
		r := newStore(t)
		ghost := newProduct(t, "Fantasma", "Nada", "1", nil)
		ghost.ID = 4242
		assert.ErrorIs(t, r.Save(ctx, &ghost), repo.ErrProductNotFound)
	})

	t.Run("Remove", func(t *testing.T) {
		r := newStore(t)
		p := save(t, r, newProduct(t, "Mesa", "Móveis", "800", nil))

		require.NoError(t, r.Remove(ctx, p))
		_, found, err := r.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, found)

		assert.ErrorIs(t, r.Remove(ctx, p), repo.ErrProductNotFound)
	})

	t.Run("Search is case-insensitive over name and description", func(t *testing.T) {
		r := newStore(t)
		save(t, r, newProduct(t, "Camisa Azul", "Roupas", "50", nil))
		save(t, r, newProduct(t, "Calça", "Roupas", "90", strPtr("jeans AZUL escuro")))
		save(t, r, newProduct(t, "Boné", "Acessórios", "30", strPtr("vermelho")))

		found, err := r.SearchByNameOrDescription(ctx, "azul", 0, 10)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Camisa Azul", found[0].Name)
		assert.Equal(t, "Calça", found[1].Name)

		total, err := r.CountByNameOrDescription(ctx, "azul")
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		page, err := r.SearchByNameOrDescription(ctx, "azul", 1, 10)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Calça", page[0].Name)
	})

	t.Run("Search folds accented capitals", func(t *testing.T) {
		r := newStore(t)
		save(t, r, newProduct(t, "ÁGUA MINERAL", "Bebidas", "3", nil))
		save(t, r, newProduct(t, "Suco", "Bebidas", "8", strPtr("LIMÃO e AÇÚCAR")))
		save(t, r, newProduct(t, "Refrigerante", "Bebidas", "6", nil))

		for _, q := range []string{"ÁGUA", "água", "Água Min"} {
			total, err := r.CountByNameOrDescription(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, 1, total, "query %q", q)
		}

		found, err := r.SearchByNameOrDescription(ctx, "limão", 0, 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Suco", found[0].Name)
	})

	t.Run("Search treats wildcards literally", func(t *testing.T) {
		r := newStore(t)
		save(t, r, newProduct(t, "Desconto 10%", "Promo", "1", nil))
		save(t, r, newProduct(t, "Desconto 100", "Promo", "1", nil))

		total, err := r.CountByNameOrDescription(ctx, "10%")
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("DistinctCategories", func(t *testing.T) {
		r := newStore(t)
		save(t, r, newProduct(t, "A", "Roupas", "1", nil))
		save(t, r, newProduct(t, "B", "Eletrônicos", "1", nil))
		save(t, r, newProduct(t, "C", "Roupas", "1", nil))

		categories, err := r.DistinctCategories(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Roupas", "Eletrônicos"}, categories)
	})

	t.Run("DistinctCategories on an empty store", func(t *testing.T) {
		r := newStore(t)
		categories, err := r.DistinctCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("FindBy pages in id order and Count ignores paging", func(t *testing.T) {
		r := newStore(t)
		var ids []int
		for _, name := range []string{"P1", "P2", "P3", "P4", "P5"} {
			ids = append(ids, save(t, r, newProduct(t, name, "Geral", "1", nil)).ID)
		}

		page, err := r.FindBy(ctx, repo.ProductFilter{Offset: intPtr(2), Limit: intPtr(2)})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, ids[2], page[0].ID)
		assert.Equal(t, ids[3], page[1].ID)

		all, err := r.FindBy(ctx, repo.ProductFilter{Limit: intPtr(0)})
		require.NoError(t, err)
		assert.Len(t, all, 5)

		total, err := r.Count(ctx, repo.ProductFilter{Offset: intPtr(2), Limit: intPtr(2)})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
	})

	t.Run("FindBy filters by category and orders", func(t *testing.T) {
		r := newStore(t)
		save(t, r, newProduct(t, "Barato", "Roupas", "10", nil))
		save(t, r, newProduct(t, "Caro", "Roupas", "100", nil))
		save(t, r, newProduct(t, "Outro", "Livros", "50", nil))

		products, err := r.FindBy(ctx, repo.ProductFilter{Category: strPtr("Roupas"), OrderBy: "price", Desc: true})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Caro", products[0].Name)
		assert.Equal(t, "Barato", products[1].Name)

		none, err := r.FindBy(ctx, repo.ProductFilter{Category: strPtr("Inexistente")})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
