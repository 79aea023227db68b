package models_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func TestNewProduct_Valid(t *testing.T) {
	p, err := models.NewProduct(models.ProductInput{
		Name:        "  Camisa Polo ",
		Price:       price("89.9"),
		Category:    " Roupas ",
		Description: strPtr("Algodão"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Camisa Polo", p.Name)
	assert.Equal(t, "Roupas", p.Category)
	assert.Equal(t, "89.90", p.PriceString())
	assert.Equal(t, "Algodão", p.DescriptionOrEmpty())
	assert.Zero(t, p.ID)
}

func TestNewProduct_PriceRounding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"19.999", "20.00"},
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"0", "0.00"},
		{"1500", "1500.00"},
		{"-0.001", "0.00"},
		{"99999999.99", "99999999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := models.NewProduct(models.ProductInput{Name: "Item", Price: price(tt.in), Category: "Geral"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.PriceString())
		})
	}
}

func TestNewProduct_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		input  models.ProductInput
		fields []string
	}{
		{
			name:   "Everything missing",
			input:  models.ProductInput{},
			fields: []string{"name", "price", "category"},
		},
		{
			name:   "Blank name",
			input:  models.ProductInput{Name: "   ", Price: price("10"), Category: "Geral"},
			fields: []string{"name"},
		},
		{
			name:   "Negative price",
			input:  models.ProductInput{Name: "Mouse", Price: price("-5"), Category: "Geral"},
			fields: []string{"price"},
		},
		{
			name:   "Price above column range",
			input:  models.ProductInput{Name: "Mouse", Price: price("100000000"), Category: "Geral"},
			fields: []string{"price"},
		},
		{
			name:   "Blank category",
			input:  models.ProductInput{Name: "Mouse", Price: price("5"), Category: ""},
			fields: []string{"category"},
		},
		{
			name:   "Name too long",
			input:  models.ProductInput{Name: strings.Repeat("a", models.MaxNameLength+1), Price: price("5"), Category: "Geral"},
			fields: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.NewProduct(tt.input)
			require.Error(t, err)

			var verrs models.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Len(t, verrs, len(tt.fields))
			for _, f := range tt.fields {
				assert.True(t, verrs.Has(f), "expected error for field %q", f)
			}
		})
	}
}

func TestNewProduct_BlankDescriptionIsNil(t *testing.T) {
	p, err := models.NewProduct(models.ProductInput{Name: "Item", Price: price("1"), Category: "Geral", Description: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, p.Description)
}

func TestProductApply(t *testing.T) {
	original, err := models.NewProduct(models.ProductInput{
		Name:        "Camisa",
		Price:       price("50"),
		Category:    "Roupas",
		Description: strPtr("Azul"),
	})
	require.NoError(t, err)
	original.ID = 7

	t.Run("Price only", func(t *testing.T) {
		updated, err := original.Apply(models.ProductPatch{Price: price("500")})
		require.NoError(t, err)
		assert.Equal(t, "500.00", updated.PriceString())
		assert.Equal(t, original.Name, updated.Name)
		assert.Equal(t, original.Category, updated.Category)
		assert.Equal(t, original.Description, updated.Description)
		assert.Equal(t, 7, updated.ID)
	})

	t.Run("Does not mutate receiver", func(t *testing.T) {
		_, err := original.Apply(models.ProductPatch{Name: strPtr("Calça")})
		require.NoError(t, err)
		assert.Equal(t, "Camisa", original.Name)
	})

	t.Run("Invalid fields are reported", func(t *testing.T) {
		_, err := original.Apply(models.ProductPatch{Name: strPtr(""), Price: price("-1")})
		var verrs models.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.Has("name"))
		assert.True(t, verrs.Has("price"))
	})

	t.Run("Empty patch", func(t *testing.T) {
		patch := models.ProductPatch{}
		assert.True(t, patch.IsEmpty())
		updated, err := original.Apply(patch)
		require.NoError(t, err)
		assert.Equal(t, original, updated)
	})
}

func TestProduct_JSONKeys(t *testing.T) {
	p, err := models.NewProduct(models.ProductInput{Name: "Mesa", Category: "Móveis", Price: price("10")})
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "name", "description", "price", "category", "createdAt", "updatedAt"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "created_at")
	assert.NotContains(t, fields, "updated_at")
}
