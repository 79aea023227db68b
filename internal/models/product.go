package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxNameLength is the column width of products.name and products.category.
	MaxNameLength = 255
	pricePlaces   = 2
)

// MaxPrice is the largest value a NUMERIC(10,2) column can hold.
var MaxPrice = decimal.RequireFromString("99999999.99")

// Product represents a product entity in the catalog.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductInput carries the fields needed to create a product.
type ProductInput struct {
	Name        string
	Description *string
	Price       *decimal.Decimal
	Category    string
}

// ProductPatch holds a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Category == nil
}

// NewProduct builds a validated product. The returned error is a ValidationErrors
// listing every offending field.
func NewProduct(in ProductInput) (Product, error) {
	var errs ValidationErrors
	p := Product{}

	name, err := normalizeName(in.Name, "name")
	if err != nil {
		errs = append(errs, *err)
	}
	p.Name = name

	category, err := normalizeName(in.Category, "category")
	if err != nil {
		errs = append(errs, *err)
	}
	p.Category = category

	if in.Price == nil {
		errs = append(errs, ValidationError{Field: "price", Description: "O preço é obrigatório."})
	} else {
		price, err := normalizePrice(*in.Price)
		if err != nil {
			errs = append(errs, *err)
		}
		p.Price = price
	}

	p.Description = normalizeDescription(in.Description)

	if len(errs) > 0 {
		return Product{}, errs
	}
	return p, nil
}

// Apply returns a copy of p with the present patch fields merged in.
func (p Product) Apply(patch ProductPatch) (Product, error) {
	var errs ValidationErrors
	out := p

	if patch.Name != nil {
		name, err := normalizeName(*patch.Name, "name")
		if err != nil {
			errs = append(errs, *err)
		}
		out.Name = name
	}
	if patch.Category != nil {
		category, err := normalizeName(*patch.Category, "category")
		if err != nil {
			errs = append(errs, *err)
		}
		out.Category = category
	}
	if patch.Price != nil {
		price, err := normalizePrice(*patch.Price)
		if err != nil {
			errs = append(errs, *err)
		}
		out.Price = price
	}
	if patch.Description != nil {
		out.Description = normalizeDescription(patch.Description)
	}

	if len(errs) > 0 {
		return p, errs
	}
	return out, nil
}

// PriceString formats the price the way it is stored: two fixed decimals.
func (p Product) PriceString() string {
	return p.Price.StringFixed(pricePlaces)
}

// DescriptionOrEmpty dereferences the optional description.
func (p Product) DescriptionOrEmpty() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

func normalizeName(value, field string) (string, *ValidationError) {
	v := strings.TrimSpace(value)
	if v == "" {
		msg := "O nome do produto não pode ser vazio."
		if field == "category" {
			msg = "A categoria não pode ser vazia."
		}
		return v, &ValidationError{Field: field, Description: msg}
	}
	if utf8.RuneCountInString(v) > MaxNameLength {
		return v, &ValidationError{Field: field, Description: fmt.Sprintf("O campo %s deve ter no máximo %d caracteres.", field, MaxNameLength)}
	}
	return v, nil
}

// normalizePrice rounds half away from zero to two places, like number_format.
func normalizePrice(price decimal.Decimal) (decimal.Decimal, *ValidationError) {
	rounded := price.Round(pricePlaces)
	if rounded.IsNegative() {
		return rounded, &ValidationError{Field: "price", Description: "O preço não pode ser negativo."}
	}
	if rounded.GreaterThan(MaxPrice) {
		return rounded, &ValidationError{Field: "price", Description: "O preço excede o valor máximo permitido."}
	}
	return rounded, nil
}

func normalizeDescription(d *string) *string {
	if d == nil || strings.TrimSpace(*d) == "" {
		return nil
	}
	v := *d
	return &v
}
